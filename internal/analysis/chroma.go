package analysis

import (
	"errors"
	"math"
)

// Frequency range folded into the chroma bins. Below ~55 Hz the STFT bins
// are too coarse to assign a pitch class; above 5 kHz harmonics dominate.
const (
	chromaMinHz = 55.0
	chromaMaxHz = 5000.0
)

// referenceC0 is the frequency of pitch class C in octave 0 (A440 tuning).
var referenceC0 = 440.0 * math.Pow(2, -4.75)

// pitchClassForHz maps a frequency to its pitch class: 0=C .. 11=B.
func pitchClassForHz(hz float64) int {
	semitones := int(math.Round(12 * math.Log2(hz/referenceC0)))
	return ((semitones % 12) + 12) % 12
}

// chromaFromSpectrogram folds a magnitude spectrogram into a 12-bin
// pitch-class energy profile averaged over all frames.
func chromaFromSpectrogram(spec [][]float64, sampleRate, windowSize int) ([12]float64, error) {
	var profile [12]float64
	if len(spec) == 0 {
		return profile, errors.New("empty spectrogram")
	}

	binHz := float64(sampleRate) / float64(windowSize)
	for _, frame := range spec {
		for bin, mag := range frame {
			hz := float64(bin) * binHz
			if hz < chromaMinHz || hz > chromaMaxHz {
				continue
			}
			profile[pitchClassForHz(hz)] += mag * mag
		}
	}

	n := float64(len(spec))
	for i := range profile {
		profile[i] /= n
	}
	return profile, nil
}
