// Package history persists batch run outcomes in SQLite.
//
// Each batch invocation creates a run row and one row per processed file
// (detected BPM, applied factor, status, error). The database is an audit
// trail, not coordination state; nothing in the pipeline reads it back
// except the history command. Schema changes bump the version in schema.go;
// users delete the database to adopt a new schema.
package history
