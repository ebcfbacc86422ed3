package pipeline

import "math"

// mean returns the arithmetic mean of values. It is only called with at
// least one sample.
func mean(values []float64) float64 {
	sum := 0.0
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

// stdDev returns the population standard deviation of values.
// Every variance rule uses this same definition so thresholds stay
// comparable across rules.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)

	sum := 0.0
	for _, value := range values {
		diff := value - m
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(values)))
}
