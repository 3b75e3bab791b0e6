// Package bpm estimates the dominant tempo of decoded audio.
//
// The estimator is the standard onset-autocorrelation method: an onset
// strength envelope is built from STFT spectral flux, then autocorrelated
// over the 60-200 BPM lag range. A mild log-normal prior centred at 120 BPM
// breaks octave ties the way listeners usually do for electronic material.
// Parabolic interpolation around the winning lag refines the estimate below
// the envelope's frame resolution.
package bpm
