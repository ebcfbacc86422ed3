package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// ConsoleSink writes the operator-facing alert message to a writer,
// typically stdout.
type ConsoleSink struct {
	// out receives the formatted alerts.
	out io.Writer
	// mu keeps alerts from concurrent workers from interleaving.
	mu sync.Mutex
}

// NewConsoleSink creates a sink writing to the provided writer.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

// Publish prints the alert message followed by the indented explanation.
func (s *ConsoleSink) Publish(_ context.Context, alert health.Alert) error {
	explanation, err := json.MarshalIndent(alert.Explanation, "", "    ")
	if err != nil {
		return fmt.Errorf("encode explanation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = fmt.Fprintf(s.out, "Device %s is malfunctioning!\nExplanation:\n%s\n-------------\n\n", alert.Device, explanation)
	if err != nil {
		return fmt.Errorf("write alert: %w", err)
	}

	return nil
}
