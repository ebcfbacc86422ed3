package health

import "fmt"

// StreamKind identifies one of the three co-recorded sensor streams.
type StreamKind string

const (
	// KindOnWrist is the wrist-contact flag stream (1 = worn, 0 = not worn).
	KindOnWrist StreamKind = "on_wrist"
	// KindTemperature is the skin temperature stream in raw sensor units.
	KindTemperature StreamKind = "temperature"
	// KindPPG is the photoplethysmogram stream in raw sensor units.
	KindPPG StreamKind = "ppg"
)

// Stream is an ordered series of samples recorded at a fixed rate.
// Values are ordered by acquisition time with no gaps, as recorded.
type Stream struct {
	// Kind tags which sensor produced the samples.
	Kind StreamKind
	// RateHz is the nominal sampling rate in samples per second.
	RateHz int
	// Values are the raw samples ordered by acquisition time.
	Values []float64
}

// Streams bundles the three per-device streams recorded over one calendar day.
type Streams struct {
	// OnWrist is the wrist-contact flag stream.
	OnWrist Stream
	// Temperature is the skin temperature stream.
	Temperature Stream
	// PPG is the photoplethysmogram stream.
	PPG Stream
}

// Record is one row of the aligned frame: the readings of all three sensors
// at one common sample position.
type Record struct {
	// OnWrist reports whether the device was worn at this sample.
	// Any nonzero wrist-contact sample counts as worn.
	OnWrist bool
	// Temperature is the skin temperature reading.
	Temperature float64
	// PPG is the photoplethysmogram reading.
	PPG float64
}

// Frame is the positionally aligned view of the three streams, one record per
// sample index at the rate of the fastest input stream. Alignment is purely
// positional: all three streams are assumed to start at the same wall-clock
// instant, and the sample index is the only clock.
type Frame struct {
	// RateHz is the common sample rate shared by every record.
	RateHz int
	// Records holds one aligned reading per sample position.
	Records []Record
}

// Len returns the number of aligned records.
func (f *Frame) Len() int {
	return len(f.Records)
}

// Segment is a maximal contiguous run of frame records sharing one wear
// state. Segments are created by the segmenter, never mutated afterwards,
// and consumed once by the rule evaluator.
type Segment struct {
	// Start is the frame index of the first record, inclusive.
	Start int
	// End is the frame index of the last record, inclusive.
	End int
	// OnWrist is the wear state shared by every record in the run.
	OnWrist bool
	// Temperature holds the temperature samples within the run.
	Temperature []float64
	// PPG holds the photoplethysmogram samples within the run.
	PPG []float64
}

// Len returns the number of records covered by the segment.
func (s *Segment) Len() int {
	return s.End - s.Start + 1
}

// ID returns the segment identifier used as the key in verdict explanations.
// It is derived from the start index, which is unique within a frame.
func (s *Segment) ID() string {
	return fmt.Sprintf("segment_%d", s.Start)
}
