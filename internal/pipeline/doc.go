// Package pipeline implements the signal-alignment and fault-detection core.
//
// Evaluate takes the three raw sensor streams of one device-day plus the
// detection thresholds and produces a Verdict: the streams are brought onto
// a common clock by zero-order-hold resampling, truncated to the shortest
// recording, zipped into an aligned frame, partitioned into maximal runs by
// wear state, and scored with per-segment statistical rules.
//
// The pipeline is a pure, single-threaded computation over in-memory slices:
// no I/O, no shared state, no context. Re-running it on identical inputs
// yields an identical verdict, and independent device-days may be evaluated
// concurrently by the caller.
package pipeline
