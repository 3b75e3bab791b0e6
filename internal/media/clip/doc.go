// Package clip holds decoded PCM audio in memory and moves it in and out of
// WAV files.
//
// A Clip always carries interleaved 16-bit-range samples plus the source
// sample rate and channel count; decoders for other bit depths scale into
// that range. This keeps the converter, the tempo detector, and the MP3
// encoder working against one representation.
package clip
