// Package rubberband drives the external rubberband CLI to time-stretch WAV
// audio without shifting pitch.
//
// The binary is treated as an opaque collaborator: the client builds the
// fixed argument contract (-t <factor> --pitch 0 --crisp N input output),
// runs it to completion, and fails on a missing binary, a non-zero exit, or
// a missing output file. Command execution goes through a small Executor
// interface so tests can stub the process boundary.
package rubberband
