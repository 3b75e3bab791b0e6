// Package batch walks a folder of audio files and retimes each one toward a
// uniform target BPM.
//
// Files are processed strictly sequentially, but each file runs inside its
// own failure boundary: a bad file records a failed outcome and the batch
// moves on, with a summary at the end. A lock file in the target folder
// keeps two batch invocations from interleaving writes. Output names are
// derived format-aware: stem_<BPM>BPM plus the output extension, so a
// non-MP3 input never silently collides with its own name.
package batch
