package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Analysis frame parameters. A 2048-sample window at 22050 Hz gives
// ~10.8 Hz frequency resolution and ~43 onset frames per second.
const (
	WindowSize = 2048
	HopSize    = 512
)

// Hamming returns a Hamming window of length n.
func Hamming(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// magnitudeSpectrum converts a complex spectrum into a magnitude spectrum
// (positive frequencies only).
func magnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum) / 2
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// STFT computes a time-major magnitude spectrogram:
// spectrogram[frameIdx][freqBin], with windowSize/2 bins per frame.
func STFT(samples []float64, windowSize, hopSize int, window []float64) ([][]float64, error) {
	if len(window) != windowSize {
		return nil, errors.New("window length must equal windowSize")
	}
	if len(samples) < windowSize {
		return nil, errors.New("input shorter than window size")
	}

	frame := make([]float64, windowSize)
	spectrogram := make([][]float64, 0, (len(samples)-windowSize)/hopSize+1)
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		copy(frame, samples[start:start+windowSize])
		for i := 0; i < windowSize; i++ {
			frame[i] *= window[i]
		}
		spectrogram = append(spectrogram, magnitudeSpectrum(fft.FFTReal(frame)))
	}
	return spectrogram, nil
}
