// Package checkup implements the device-check service: it evaluates a
// single device directory and prints the full report as JSON, so one device
// can be judged ad hoc without scanning a whole bucket.
package checkup
