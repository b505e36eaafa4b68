package analysis

import (
	"errors"
	"fmt"
	"math"
)

// Tempo search range and prior. The log-normal prior centered at 120 BPM
// breaks ties between a pulse and its half/double-time aliases.
const (
	minBPM      = 30.0
	maxBPM      = 300.0
	priorCenter = 120.0
	priorWidth  = 1.0 // standard deviation in octaves
)

// onsetEnvelope derives an onset-strength curve from a magnitude
// spectrogram: per-frame half-wave rectified spectral flux.
func onsetEnvelope(spec [][]float64) []float64 {
	env := make([]float64, len(spec))
	for t := 1; t < len(spec); t++ {
		var flux float64
		for k, mag := range spec[t] {
			if d := mag - spec[t-1][k]; d > 0 {
				flux += d
			}
		}
		env[t] = flux
	}
	return env
}

// TempoFromOnsets picks the dominant pulse period of an onset-strength
// curve by autocorrelation over the BPM search range, weighted by the tempo
// prior, with parabolic interpolation around the winning lag.
func TempoFromOnsets(env []float64, frameRate float64) (float64, error) {
	if len(env) == 0 {
		return 0, errors.New("empty onset envelope")
	}

	// Remove the mean so a constant flux floor does not flatten the
	// autocorrelation.
	var mean float64
	for _, v := range env {
		mean += v
	}
	mean /= float64(len(env))
	centered := make([]float64, len(env))
	for i, v := range env {
		centered[i] = v - mean
	}

	minLag := int(math.Ceil(frameRate * 60.0 / maxBPM))
	maxLag := int(math.Floor(frameRate * 60.0 / minBPM))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(centered) {
		maxLag = len(centered) - 1
	}
	if maxLag < minLag {
		return 0, errors.New("onset envelope too short for tempo search")
	}

	autocorr := func(lag int) float64 {
		var sum float64
		for i := 0; i+lag < len(centered); i++ {
			sum += centered[i] * centered[i+lag]
		}
		return sum / float64(len(centered)-lag)
	}

	score := func(lag int) float64 {
		bpm := 60.0 * frameRate / float64(lag)
		octaves := math.Log2(bpm/priorCenter) / priorWidth
		return autocorr(lag) * math.Exp(-0.5*octaves*octaves)
	}

	bestLag := minLag
	bestScore := score(minLag)
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if s := score(lag); s > bestScore {
			bestScore, bestLag = s, lag
		}
	}

	// Refine the integer lag with a parabola through its neighbors.
	lag := float64(bestLag)
	if bestLag > minLag && bestLag < maxLag {
		y0, y1, y2 := score(bestLag-1), score(bestLag), score(bestLag+1)
		denom := y0 - 2*y1 + y2
		if denom != 0 {
			delta := 0.5 * (y0 - y2) / denom
			if delta > -1 && delta < 1 {
				lag += delta
			}
		}
	}

	bpm := 60.0 * frameRate / lag
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return 0, fmt.Errorf("degenerate tempo estimate: %v", bpm)
	}
	return bpm, nil
}

// EstimateTempo produces a single beats-per-minute estimate for a waveform.
func EstimateTempo(samples []float64, sampleRate int) (float64, error) {
	spec, err := STFT(samples, WindowSize, HopSize, Hamming(WindowSize))
	if err != nil {
		return 0, err
	}
	frameRate := float64(sampleRate) / float64(HopSize)
	return TempoFromOnsets(onsetEnvelope(spec), frameRate)
}
