package frames

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Screen dimensions of the console framebuffer.
const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// Encoder converts one raw RGBA framebuffer into wire bytes.
type Encoder func(raw []byte) ([]byte, error)

// JPEGEncoder returns an encoder producing JPEG frames at the given
// quality. Go's encoder downsamples chroma to 4:2:0 for color images,
// which is what spectator clients expect.
func JPEGEncoder(quality int) Encoder {
	if quality <= 0 || quality > 100 {
		quality = 75
	}
	return func(raw []byte) ([]byte, error) {
		want := ScreenWidth * ScreenHeight * 4
		if len(raw) != want {
			return nil, fmt.Errorf("framebuffer size: got %d bytes, want %d", len(raw), want)
		}

		img := &image.RGBA{
			Pix:    raw,
			Stride: ScreenWidth * 4,
			Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), nil
	}
}
