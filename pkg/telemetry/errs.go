package telemetry

import "errors"

// ErrParseFailure indicates that a required source (aggregate CPU line or
// meminfo) could not be read or interpreted. The tick is discarded and no
// sampler state changes.
var ErrParseFailure = errors.New("telemetry: required source failed")
