// Package report persists the outcome of device scans.
//
// The FileStore writes one JSON report per scanned day for archival; the
// RedisStore mirrors each device's report into a per-day hash that dashboard
// tooling reads. Both implement the Store interface the scanner depends on.
package report
