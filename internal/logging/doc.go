// Package logging constructs the slog logger used across retempo.
//
// Two output formats are supported: a human-oriented console handler used for
// interactive runs, and standard JSON for anything that wants to parse the
// stream. NewFromConfig additionally tees output into the configured log
// directory.
package logging
