package pipeline

import (
	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// Align resamples the three streams onto their common rate and zips them
// positionally into a Frame, one record per sample index.
//
// Alignment is positional only: the streams are assumed to start at the same
// wall-clock instant, so index i of every resampled stream refers to the
// same moment. There are no timestamps to reconcile against.
func Align(streams health.Streams) (*health.Frame, error) {
	r, err := resample(streams)
	if err != nil {
		return nil, err
	}

	records := make([]health.Record, len(r.onWrist))
	for i := range records {
		records[i] = health.Record{
			OnWrist:     r.onWrist[i] != 0,
			Temperature: r.temperature[i],
			PPG:         r.ppg[i],
		}
	}

	return &health.Frame{
		RateHz:  r.rateHz,
		Records: records,
	}, nil
}
