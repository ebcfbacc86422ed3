package alert

import (
	"context"
	"errors"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// Sink delivers a malfunction alert to one destination.
type Sink interface {
	Publish(ctx context.Context, alert health.Alert) error
}

// MultiSink fans an alert out to every sink, trying all of them even when
// some fail, and reports the combined failures.
type MultiSink []Sink

// Publish delivers the alert to each sink in order.
func (m MultiSink) Publish(ctx context.Context, alert health.Alert) error {
	var errs []error

	for _, sink := range m {
		if err := sink.Publish(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
