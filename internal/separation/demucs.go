package separation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultModel is the pretrained demucs model used for separation.
const DefaultModel = "htdemucs_ft"

// Demucs invokes the demucs CLI and reads its stem output back into memory.
// Persisting the stems is the caller's job.
type Demucs struct {
	model string
}

func NewDemucs() *Demucs {
	return &Demucs{model: DefaultModel}
}

// detectDevice probes for an NVIDIA accelerator. A visible driver is
// treated as a usable device; anything else runs on CPU.
func detectDevice() string {
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return "cuda"
	}
	return "cpu"
}

// Separate runs the model over the input file and returns a complete stem
// mapping plus the model's native output sample rate.
func (d *Demucs) Separate(ctx context.Context, inputPath string) (map[string]*goaudio.IntBuffer, int, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
	}

	scratch, err := os.MkdirTemp("", "stemforge-sep-")
	if err != nil {
		return nil, 0, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	device := detectDevice()
	cmd := exec.CommandContext(
		ctx,
		"demucs",
		"-n", d.model,
		"-d", device,
		"--out", scratch,
		inputPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("demucs failed on %s: %v (%s)", device, err, out)
	}

	// Demucs writes separated/<model>/<basename>/<stem>.wav.
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	stemDir := filepath.Join(scratch, d.model, base)

	return collectStems(stemDir)
}

// collectStems reads every WAV in dir into an interleaved PCM buffer keyed
// by stem name, and reports the common sample rate.
func collectStems(dir string) (map[string]*goaudio.IntBuffer, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading stem directory: %w", err)
	}

	stems := make(map[string]*goaudio.IntBuffer)
	sampleRate := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		buf, err := readStem(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, 0, fmt.Errorf("reading stem %s: %w", name, err)
		}
		stems[name] = buf
		if sampleRate == 0 {
			sampleRate = buf.Format.SampleRate
		}
	}

	if len(stems) == 0 {
		return nil, 0, fmt.Errorf("no stems found in %s", dir)
	}
	return stems, sampleRate, nil
}

func readStem(path string) (*goaudio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("stem contains no samples: %s", path)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(decoder.BitDepth)
	}
	return buf, nil
}
