package pipeline

import (
	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// Segments partitions the frame into maximal contiguous runs of equal wear
// state and returns them split by that state, each list ordered by start
// index. The runs are non-overlapping, cover every record exactly once, and
// each holds at least one record.
//
// Splitting at every wear transition matters for the rules: a temperature
// decay trend, for instance, only makes sense within one unbroken
// taken-off period.
func Segments(frame *health.Frame) (wristOn, wristOff []health.Segment) {
	records := frame.Records
	if len(records) == 0 {
		return nil, nil
	}

	start := 0

	for i := 1; i <= len(records); i++ {
		if i < len(records) && records[i].OnWrist == records[start].OnWrist {
			continue
		}

		segment := buildSegment(records, start, i-1)
		if segment.OnWrist {
			wristOn = append(wristOn, segment)
		} else {
			wristOff = append(wristOff, segment)
		}

		start = i
	}

	return wristOn, wristOff
}

// buildSegment copies the sensor values of records[start..end] into a new
// immutable Segment.
func buildSegment(records []health.Record, start, end int) health.Segment {
	length := end - start + 1
	temperature := make([]float64, 0, length)
	ppg := make([]float64, 0, length)

	for i := start; i <= end; i++ {
		temperature = append(temperature, records[i].Temperature)
		ppg = append(ppg, records[i].PPG)
	}

	return health.Segment{
		Start:       start,
		End:         end,
		OnWrist:     records[start].OnWrist,
		Temperature: temperature,
		PPG:         ppg,
	}
}
