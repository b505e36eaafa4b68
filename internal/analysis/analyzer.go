package analysis

import (
	"context"
	"fmt"
	"os"

	"github.com/himanishpuri/StemForge/internal/audio"
)

// Result is the key and tempo of one track.
type Result struct {
	Key Key
	BPM float64
}

// Decoder turns an audio file into mono float64 samples plus a sample rate.
// The default implementation shells out to ffmpeg; tests substitute fakes.
type Decoder func(ctx context.Context, path string) ([]float64, int, error)

// DecodeFile is the default Decoder: convert to mono 16-bit WAV at the
// analysis rate via ffmpeg, then read the samples back.
func DecodeFile(ctx context.Context, path string) ([]float64, int, error) {
	wavPath, err := audio.ConvertToMonoWAV(ctx, path, os.TempDir(), audio.ConvertWAVConfig{
		SampleRate: audio.DefaultAnalysisRate,
	})
	if err != nil {
		return nil, 0, err
	}
	defer os.Remove(wavPath)
	return audio.ReadWavAsFloat64(wavPath)
}

// Analyzer runs the tempo and key estimators over one shared decode pass.
type Analyzer struct {
	decode Decoder
}

func NewAnalyzer(decode Decoder) *Analyzer {
	if decode == nil {
		decode = DecodeFile
	}
	return &Analyzer{decode: decode}
}

// Analyze decodes the file once and returns its key and tempo.
func (a *Analyzer) Analyze(ctx context.Context, path string) (Result, error) {
	samples, sampleRate, err := a.decode(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	// One STFT feeds both estimators.
	spec, err := STFT(samples, WindowSize, HopSize, Hamming(WindowSize))
	if err != nil {
		return Result{}, fmt.Errorf("spectral analysis of %s: %w", path, err)
	}

	profile, err := chromaFromSpectrogram(spec, sampleRate, WindowSize)
	if err != nil {
		return Result{}, fmt.Errorf("chroma extraction of %s: %w", path, err)
	}

	frameRate := float64(sampleRate) / float64(HopSize)
	bpm, err := TempoFromOnsets(onsetEnvelope(spec), frameRate)
	if err != nil {
		return Result{}, fmt.Errorf("tempo estimation of %s: %w", path, err)
	}

	return Result{Key: KeyFromChroma(profile), BPM: bpm}, nil
}
