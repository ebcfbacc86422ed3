// Package samples reads recorded sensor streams from the day bucket.
//
// The bucket is laid out as <root>/YYYY/MM/DD/device_NNN with one headerless
// single-column CSV per stream inside each device directory. The
// BucketRepository lists device directories for a day and loads their three
// streams; LoadDir reads a single device directory wherever it lives.
package samples
