package pipeline

import (
	"fmt"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// resampled holds the three streams after upsampling to the common rate and
// truncating to the shortest resulting length.
type resampled struct {
	onWrist     []float64
	temperature []float64
	ppg         []float64
	// rateHz is the common rate, equal to the fastest input stream's rate.
	rateHz int
}

// resample brings all three streams onto the rate of the fastest one.
//
// Slower streams are upsampled by zero-order hold: each sample is repeated
// targetRate/rate times. Repetition, not interpolation, preserves the
// step-function nature of the wrist-contact flag and invents no precision in
// temperature. The upsampled sequences are then truncated to the shortest
// length, because the three recordings of a day may differ slightly in total
// duration and padding would invent data.
func resample(streams health.Streams) (resampled, error) {
	var out resampled

	targetRate, err := commonRate(streams)
	if err != nil {
		return out, err
	}

	onWrist, err := upsampleStream(streams.OnWrist, targetRate)
	if err != nil {
		return out, err
	}

	temperature, err := upsampleStream(streams.Temperature, targetRate)
	if err != nil {
		return out, err
	}

	ppg, err := upsampleStream(streams.PPG, targetRate)
	if err != nil {
		return out, err
	}

	cutoff := min(len(onWrist), len(temperature), len(ppg))
	if cutoff == 0 {
		return out, fmt.Errorf("%w: %s", ErrInsufficientData, describeEmpty(streams))
	}

	out = resampled{
		onWrist:     onWrist[:cutoff],
		temperature: temperature[:cutoff],
		ppg:         ppg[:cutoff],
		rateHz:      targetRate,
	}

	return out, nil
}

// commonRate returns the fastest of the three stream rates after checking
// that every rate is positive.
func commonRate(streams health.Streams) (int, error) {
	rate := 0

	for _, stream := range []health.Stream{streams.OnWrist, streams.Temperature, streams.PPG} {
		if stream.RateHz <= 0 {
			return 0, fmt.Errorf("%w: %s stream rate must be positive, got %d Hz", ErrConfiguration, stream.Kind, stream.RateHz)
		}

		if stream.RateHz > rate {
			rate = stream.RateHz
		}
	}

	return rate, nil
}

// upsampleStream repeats each sample of the stream to reach the target rate.
// The ratio must be integral: a fractional repeat count would shift samples
// in time instead of holding them.
func upsampleStream(stream health.Stream, targetRate int) ([]float64, error) {
	if targetRate%stream.RateHz != 0 {
		return nil, fmt.Errorf(
			"%w: %s stream rate %d Hz does not divide the target rate %d Hz",
			ErrConfiguration, stream.Kind, stream.RateHz, targetRate,
		)
	}

	return upsample(stream.Values, targetRate/stream.RateHz), nil
}

// upsample is the zero-order hold: every value appears factor times in a row.
// The output length is exactly len(values) * factor.
func upsample(values []float64, factor int) []float64 {
	if factor == 1 {
		// The fastest stream passes through untouched.
		return values
	}

	out := make([]float64, 0, len(values)*factor)
	for _, value := range values {
		for i := 0; i < factor; i++ {
			out = append(out, value)
		}
	}

	return out
}

// describeEmpty names the streams with no samples for error messages.
func describeEmpty(streams health.Streams) string {
	empty := ""

	for _, stream := range []health.Stream{streams.OnWrist, streams.Temperature, streams.PPG} {
		if len(stream.Values) > 0 {
			continue
		}

		if empty != "" {
			empty += ", "
		}

		empty += string(stream.Kind)
	}

	if empty == "" {
		return "no overlapping samples across streams"
	}

	return "empty stream(s): " + empty
}
