// Package services defines shared utilities consumed by the tempo pipeline
// stages and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp source files, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across conversion, detection, stretching,
//     and tagging.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
