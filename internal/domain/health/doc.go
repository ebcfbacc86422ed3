// Package health contains the core domain types for device health evaluation.
//
// It defines the raw sensor Stream, the positionally aligned Frame, the
// Segment (a maximal run of records sharing one wear state), and the Verdict
// produced for a device-day together with its per-segment rule evidence.
// All values are produced once by a pipeline stage and consumed immutably by
// the next; nothing in this package performs I/O.
package health
