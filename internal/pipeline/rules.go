package pipeline

import (
	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// Rule names as they appear in verdict explanations. The worn and not-worn
// rule sets are disjoint: each segment is scored only against the set
// matching its wear state.
const (
	// RuleTemperatureOutOfRange flags a worn segment containing a
	// temperature sample outside [MinTemp, MaxTemp].
	RuleTemperatureOutOfRange = "temperature_out_of_range"
	// RuleTemperatureHighVariance flags a worn segment whose temperature
	// standard deviation exceeds TempStdOnMax.
	RuleTemperatureHighVariance = "temperature_high_variance"
	// RulePPGHighVariance flags a worn segment whose PPG standard deviation
	// exceeds PPGStdOnMax.
	RulePPGHighVariance = "ppg_high_variance"
	// RuleTemperatureNotDecreasing flags a not-worn segment whose
	// temperature rises: skin cools once the device comes off, so an upward
	// step beyond the tolerance indicates a stuck sensor.
	RuleTemperatureNotDecreasing = "temperature_not_decreasing"
	// RulePPGHighVarianceOff flags a not-worn segment whose PPG standard
	// deviation exceeds PPGStdOffMax, the stricter of the two PPG caps.
	RulePPGHighVarianceOff = "ppg_high_variance_off"
)

// EvaluateSegment scores one segment against the rule set for its wear
// state and returns the full rule map, violated or not.
//
// Statistical rules are total functions: they never fail, whatever the
// segment contents. A single-record segment has no defined deviation, so
// variance rules treat it as non-violating (insufficient evidence) while
// range and monotonicity checks still apply.
func EvaluateSegment(segment health.Segment, thresholds Thresholds) health.RuleResult {
	if segment.OnWrist {
		return evaluateWorn(segment, thresholds)
	}

	return evaluateNotWorn(segment, thresholds)
}

// evaluateWorn applies the worn-device rules: while on the wrist the
// temperature must stay inside the configured interval and both sensors
// should show bounded variance.
func evaluateWorn(segment health.Segment, thresholds Thresholds) health.RuleResult {
	return health.RuleResult{
		RuleTemperatureOutOfRange:   anyOutside(segment.Temperature, thresholds.MinTemp, thresholds.MaxTemp),
		RuleTemperatureHighVariance: hasVariance(segment) && stdDev(segment.Temperature) > thresholds.TempStdOnMax,
		RulePPGHighVariance:         hasVariance(segment) && stdDev(segment.PPG) > thresholds.PPGStdOnMax,
	}
}

// evaluateNotWorn applies the taken-off rules: temperature must not climb
// and the PPG should be near flat.
func evaluateNotWorn(segment health.Segment, thresholds Thresholds) health.RuleResult {
	return health.RuleResult{
		RuleTemperatureNotDecreasing: hasIncreasingStep(segment.Temperature, thresholds.TempDecreaseTolerance),
		RulePPGHighVarianceOff:       hasVariance(segment) && stdDev(segment.PPG) > thresholds.PPGStdOffMax,
	}
}

// hasVariance reports whether the segment holds enough samples for a
// meaningful standard deviation.
func hasVariance(segment health.Segment) bool {
	return segment.Len() > 1
}

// anyOutside reports whether any value falls outside the closed interval
// [low, high].
func anyOutside(values []float64, low, high float64) bool {
	for _, value := range values {
		if value < low || value > high {
			return true
		}
	}

	return false
}

// hasIncreasingStep reports whether any sample exceeds its predecessor by
// more than tolerance.
func hasIncreasingStep(values []float64, tolerance float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] > tolerance {
			return true
		}
	}

	return false
}
