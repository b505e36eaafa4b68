// Package render produces diagnostic spectrogram images of analyzed audio.
package render

import (
	"errors"
	"image"
	"image/draw"

	"github.com/eligwz/spectrogram"
)

const (
	imageWidth  = 2048
	imageHeight = 512
)

// WriteSpectrogramPNG renders a magnitude spectrogram of the samples to a
// PNG file. Hamming-windowed FFT, linear magnitude scale.
func WriteSpectrogramPNG(samples []float64, sampleRate int, outPath string) error {
	if len(samples) == 0 {
		return errors.New("no samples to render")
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, imageWidth, imageHeight))

	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(imageHeight), // bins
		false,               // RECTANGLE (use Hamming window)
		false,               // DFT (use FFT instead)
		true,                // MAG (magnitude)
		false,               // LOG10 (linear scale)
	)

	return spectrogram.SavePng(img, outPath)
}
