package separation

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/himanishpuri/StemForge/internal/audio"
)

func writeStemFixture(t *testing.T, dir, name string, sampleRate int) {
	t.Helper()
	data := make([]int, 1000)
	for i := range data {
		data[i] = (i%100 - 50) * 100
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := audio.WriteWav(filepath.Join(dir, name), buf); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func TestCollectStems(t *testing.T) {
	dir := t.TempDir()
	writeStemFixture(t, dir, "vocals.wav", 44100)
	writeStemFixture(t, dir, "drums.wav", 44100)
	// Non-WAV content must be ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	stems, sampleRate, err := collectStems(dir)
	if err != nil {
		t.Fatalf("collectStems failed: %v", err)
	}
	if sampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", sampleRate)
	}
	if len(stems) != 2 {
		t.Fatalf("expected 2 stems, got %d", len(stems))
	}
	for _, name := range []string{"vocals", "drums"} {
		buf, ok := stems[name]
		if !ok {
			t.Errorf("missing stem %q", name)
			continue
		}
		if len(buf.Data) == 0 {
			t.Errorf("stem %q has no samples", name)
		}
	}
}

func TestCollectStemsEmptyDir(t *testing.T) {
	if _, _, err := collectStems(t.TempDir()); err == nil {
		t.Error("expected error for a directory with no stems")
	}
}

func TestCollectStemsMissingDir(t *testing.T) {
	if _, _, err := collectStems(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestDetectDeviceReturnsKnownValue(t *testing.T) {
	device := detectDevice()
	if device != "cuda" && device != "cpu" {
		t.Errorf("unexpected device %q", device)
	}
}
