package audio

import (
	"errors"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWav writes an interleaved PCM buffer to path as a WAV file at the
// buffer's own sample rate and channel count.
func WriteWav(path string, buf *audio.IntBuffer) error {
	if buf == nil || buf.Format == nil {
		return errors.New("nil PCM buffer")
	}
	if len(buf.Data) == 0 {
		return errors.New("PCM buffer contains no samples")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
