package pipeline

import "fmt"

// Thresholds parameterises the detection rules. Values are expressed in raw
// sensor units; picking physiologically sound numbers is the operator's job,
// not the pipeline's. The zero value is invalid: thresholds always arrive
// explicitly from configuration.
type Thresholds struct {
	// MinTemp and MaxTemp bound the acceptable temperature interval while
	// the device is worn.
	MinTemp float64
	MaxTemp float64
	// TempStdOnMax caps the temperature standard deviation of a worn segment.
	TempStdOnMax float64
	// PPGStdOnMax caps the PPG standard deviation of a worn segment.
	PPGStdOnMax float64
	// TempDecreaseTolerance is the largest upward temperature step allowed
	// within a not-worn segment before it counts as not decreasing.
	TempDecreaseTolerance float64
	// PPGStdOffMax caps the PPG standard deviation of a not-worn segment.
	// It must stay below PPGStdOnMax: an unworn device shows near-flat PPG.
	PPGStdOffMax float64
}

// Validate checks the thresholds for internal consistency.
// All violations wrap ErrConfiguration.
func (t Thresholds) Validate() error {
	if t.MinTemp >= t.MaxTemp {
		return fmt.Errorf("%w: min_temp %g must be below max_temp %g", ErrConfiguration, t.MinTemp, t.MaxTemp)
	}

	if t.TempStdOnMax <= 0 {
		return fmt.Errorf("%w: temp_std_on_max must be positive, got %g", ErrConfiguration, t.TempStdOnMax)
	}

	if t.PPGStdOnMax <= 0 {
		return fmt.Errorf("%w: ppg_std_on_max must be positive, got %g", ErrConfiguration, t.PPGStdOnMax)
	}

	if t.PPGStdOffMax <= 0 {
		return fmt.Errorf("%w: ppg_std_off_max must be positive, got %g", ErrConfiguration, t.PPGStdOffMax)
	}

	if t.PPGStdOffMax >= t.PPGStdOnMax {
		return fmt.Errorf(
			"%w: ppg_std_off_max %g must be below ppg_std_on_max %g",
			ErrConfiguration, t.PPGStdOffMax, t.PPGStdOnMax,
		)
	}

	if t.TempDecreaseTolerance < 0 {
		return fmt.Errorf(
			"%w: temp_decrease_tolerance must not be negative, got %g",
			ErrConfiguration, t.TempDecreaseTolerance,
		)
	}

	return nil
}
