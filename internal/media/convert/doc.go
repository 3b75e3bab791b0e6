// Package convert transcodes audio files between the formats the pipeline
// touches: compressed input (MP3, FLAC) or WAV into intermediate WAV, and
// stretched WAV back into MP3.
//
// Decoding is pure Go (hajimehoshi/go-mp3, mewkiz/flac, go-audio/wav) and the
// MP3 encoder is the shine port. Sample rate and channel count follow the
// source; intermediate WAVs are always written as 16-bit PCM.
package convert
