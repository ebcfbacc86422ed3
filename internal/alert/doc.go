// Package alert publishes malfunction alerts for faulty devices.
//
// The ConsoleSink prints the operator-facing message to a writer, the
// KafkaSink publishes alerts to a topic keyed by device, and the MultiSink
// fans a single alert out to several sinks. Only faulty devices are alerted;
// full reports, healthy devices included, go to the report stores.
package alert
