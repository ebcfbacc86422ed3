// Package scanner implements the device-scan service: it walks the sample
// bucket for the requested days, evaluates every recorded device through the
// pipeline with a bounded worker pool, publishes alerts for faulty devices
// and persists the full per-day report.
//
// Device evaluations are isolated from each other: a device whose data
// cannot be read or evaluated is reported as unable to evaluate and never
// affects its siblings. A run lock in the bucket root keeps two scans of the
// same bucket from overlapping.
package scanner
