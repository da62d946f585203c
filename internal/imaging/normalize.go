package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxHeight bounds the stored image height in pixels.
	MaxHeight = 1600
	// Quality is the lossy WebP quality on a 0-100 scale.
	Quality = 85
	// MaxPixels caps the declared size of an upload before any pixel
	// buffer is allocated.
	MaxPixels = 40_000_000

	ContentType = "image/webp"
	Extension   = ".webp"
)

var (
	errEmptyOutput = errors.New("encoder produced no data")
	ErrTooLarge    = errors.New("image dimensions exceed the pixel limit")
)

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode image: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode webp: %v", e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// Normalize decodes raw, scales it down to MaxHeight when taller and
// re-encodes it as lossy WebP. Images within bounds keep their native
// size; aspect ratio is always preserved.
func Normalize(raw []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)}
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	b := img.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy())
	if h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}

	var out bytes.Buffer
	if err := webp.Encode(&out, img, &webp.Options{Quality: Quality}); err != nil {
		return nil, &EncodeError{Err: err}
	}
	if out.Len() == 0 {
		return nil, &EncodeError{Err: errEmptyOutput}
	}
	return out.Bytes(), nil
}

// TargetSize returns the output dimensions for an image of w x h.
func TargetSize(w, h int) (int, int) {
	if h <= MaxHeight {
		return w, h
	}
	nw := int(math.Round(float64(w) * MaxHeight / float64(h)))
	if nw < 1 {
		nw = 1
	}
	return nw, MaxHeight
}
