// Package config defines checker settings used by binaries and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the bucket location, stream sample rates, rule
// thresholds and the optional alert and report destinations. Load overlays
// user settings on the reference defaults, so a minimal file is enough.
package config
