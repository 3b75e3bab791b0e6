// Package tempo orchestrates a single tempo change: convert the input to a
// scratch WAV, detect the current BPM when a target was requested, stretch
// by the resulting factor, then export to the requested output format.
//
// Exactly one of target BPM or explicit factor must be supplied. Scratch
// WAVs get collision-safe unique names and are removed on every exit path,
// success or failure, so concurrent or interrupted runs never trip over each
// other's intermediates.
package tempo
