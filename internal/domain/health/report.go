package health

import "time"

// Outcome distinguishes the three end states of a device-day evaluation.
// "Unable to evaluate" is deliberately kept apart from a healthy verdict:
// a unit that could not be evaluated must never look healthy downstream.
type Outcome string

const (
	// OutcomeHealthy means the unit was evaluated and no rule was violated.
	OutcomeHealthy Outcome = "healthy"
	// OutcomeFaulty means the unit was evaluated and at least one rule was violated.
	OutcomeFaulty Outcome = "faulty"
	// OutcomeUnable means the unit could not be evaluated (missing or bad data).
	OutcomeUnable Outcome = "unable_to_evaluate"
)

// DeviceReport captures the result of evaluating one device-day unit.
type DeviceReport struct {
	// Device is the device directory name, e.g. "device_042".
	Device string `json:"device"`
	// Day is the calendar day of the recordings in YYYY-MM-DD form.
	Day string `json:"day"`
	// EvaluationID uniquely identifies this evaluation for audit purposes.
	EvaluationID string `json:"evaluation_id"`
	// Outcome is the tri-state result of the evaluation.
	Outcome Outcome `json:"outcome"`
	// Verdict holds the full rule evidence when the unit was evaluated.
	Verdict *Verdict `json:"verdict,omitempty"`
	// Error describes why the unit could not be evaluated, if it could not.
	Error string `json:"error,omitempty"`
}

// ScanReport aggregates the device reports of one scanned day.
type ScanReport struct {
	// Day is the scanned calendar day in YYYY-MM-DD form.
	Day string `json:"day"`
	// StartedAt is when the scan of this day began.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the last unit of this day completed.
	FinishedAt time.Time `json:"finished_at"`
	// Devices holds one report per discovered device, ordered by device name.
	Devices []DeviceReport `json:"devices"`
}

// Counts tallies the report's outcomes.
func (r *ScanReport) Counts() (healthy, faulty, unable int) {
	for _, device := range r.Devices {
		switch device.Outcome {
		case OutcomeHealthy:
			healthy++
		case OutcomeFaulty:
			faulty++
		case OutcomeUnable:
			unable++
		}
	}

	return healthy, faulty, unable
}

// Alert describes a faulty device-day for delivery to alert sinks.
type Alert struct {
	// Device is the malfunctioning device name.
	Device string `json:"device"`
	// Day is the calendar day of the faulty recordings in YYYY-MM-DD form.
	Day string `json:"day"`
	// EvaluationID ties the alert back to the evaluation that raised it.
	EvaluationID string `json:"evaluation_id"`
	// RaisedAt is when the fault was detected.
	RaisedAt time.Time `json:"raised_at"`
	// Explanation carries the per-segment rule evidence for the fault.
	Explanation Explanation `json:"explanation"`
}
