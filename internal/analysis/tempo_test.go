package analysis

import (
	"math"
	"testing"
)

// clickTrack renders an impulse train at the given tempo.
func clickTrack(sampleRate int, bpm float64, seconds float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float64, n)
	period := int(float64(sampleRate) * 60.0 / bpm)
	for i := 0; i < n; i += period {
		samples[i] = 1.0
		if i+1 < n {
			samples[i+1] = 0.7
		}
	}
	return samples
}

func TestEstimateTempoClickTrack(t *testing.T) {
	samples := clickTrack(22050, 120, 12.0)

	bpm, err := EstimateTempo(samples, 22050)
	if err != nil {
		t.Fatalf("EstimateTempo failed: %v", err)
	}
	if bpm < 110 || bpm > 130 {
		t.Errorf("expected ~120 BPM for a 120 BPM click track, got %.2f", bpm)
	}
}

func TestEstimateTempoFiniteAndPositive(t *testing.T) {
	tempos := []float64{80, 95, 140, 174}
	for _, want := range tempos {
		samples := clickTrack(22050, want, 10.0)
		bpm, err := EstimateTempo(samples, 22050)
		if err != nil {
			t.Fatalf("EstimateTempo(%v BPM) failed: %v", want, err)
		}
		if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
			t.Errorf("tempo must be finite and positive, got %v", bpm)
		}
	}
}

func TestEstimateTempoDeterministic(t *testing.T) {
	samples := clickTrack(22050, 95, 8.0)

	first, err := EstimateTempo(samples, 22050)
	if err != nil {
		t.Fatalf("EstimateTempo failed: %v", err)
	}
	second, err := EstimateTempo(samples, 22050)
	if err != nil {
		t.Fatalf("EstimateTempo failed on second run: %v", err)
	}
	if first != second {
		t.Errorf("estimates differ across runs: %v vs %v", first, second)
	}
}

func TestTempoFromOnsetsEmptyEnvelope(t *testing.T) {
	if _, err := TempoFromOnsets(nil, 43.0); err == nil {
		t.Error("expected error for empty onset envelope")
	}
}

func TestTempoFromOnsetsShortEnvelope(t *testing.T) {
	if _, err := TempoFromOnsets([]float64{1, 0, 1}, 43.0); err == nil {
		t.Error("expected error for an envelope shorter than the minimum lag")
	}
}

func TestOnsetEnvelopeRectified(t *testing.T) {
	spec := [][]float64{
		{1, 2, 3},
		{2, 1, 5}, // +1, -1, +2 -> flux 3
		{0, 0, 0}, // all negative -> flux 0
	}
	env := onsetEnvelope(spec)

	if env[0] != 0 {
		t.Errorf("first frame has no predecessor, expected 0, got %v", env[0])
	}
	if env[1] != 3 {
		t.Errorf("expected rectified flux 3, got %v", env[1])
	}
	if env[2] != 0 {
		t.Errorf("decreasing magnitudes must contribute nothing, got %v", env[2])
	}
}
