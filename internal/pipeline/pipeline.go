package pipeline

import (
	"errors"
	"fmt"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

var (
	// ErrConfiguration marks a unit that cannot be evaluated until its
	// configuration is fixed: a non-integral resample ratio or inconsistent
	// thresholds. Retrying with the same inputs will fail again.
	ErrConfiguration = errors.New("invalid pipeline configuration")

	// ErrInsufficientData marks a unit with too little data to evaluate:
	// one or more streams are empty after truncation. The caller may retry
	// once data has backfilled, or skip the unit. It must never be
	// mistaken for a healthy verdict.
	ErrInsufficientData = errors.New("insufficient sensor data")
)

// Evaluate runs the full detection pipeline for one device-day and returns
// its Verdict: resample to a common clock, align, segment by wear state,
// score every segment, and aggregate.
//
// A single violated rule on a single segment marks the whole device-day
// faulty; there is no quorum. The explanation keeps every segment's complete
// rule map either way so the decision can be audited.
func Evaluate(streams health.Streams, thresholds Thresholds) (*health.Verdict, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("validate thresholds: %w", err)
	}

	frame, err := Align(streams)
	if err != nil {
		return nil, fmt.Errorf("align streams: %w", err)
	}

	wristOn, wristOff := Segments(frame)

	explanation := health.NewExplanation()
	for _, segment := range wristOn {
		explanation.WristOn[segment.ID()] = EvaluateSegment(segment, thresholds)
	}

	for _, segment := range wristOff {
		explanation.WristOff[segment.ID()] = EvaluateSegment(segment, thresholds)
	}

	return &health.Verdict{
		IsFaulty:    explanation.AnyViolated(),
		Explanation: explanation,
	}, nil
}
