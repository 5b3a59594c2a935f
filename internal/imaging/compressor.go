// Package imaging recompresses uploaded images to a bounded JPEG budget.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	// MaxInputBytes caps uploads before decode; oversized bodies are rejected
	// without decoding.
	MaxInputBytes = 10 << 20

	DefaultTargetBytes = 500 << 10
	DefaultMaxDim      = 1600

	maxAttempts   = 8
	minQuality    = 30
	startQuality  = 85
	dimShrinkStep = 0.8
)

var (
	ErrInputTooLarge = errors.New("image too large")
	ErrUndecodable   = errors.New("unsupported image format")
	ErrBudgetTooLow  = errors.New("size budget unreachable")
)

// Options bound the output. Zero values take the defaults above.
type Options struct {
	TargetBytes int
	MaxDim      int
}

// Result is the compressed output plus the parameters that produced it.
type Result struct {
	Data     []byte
	Quality  int
	Width    int
	Height   int
	Attempts int
}

type Compressor struct {
	log *zap.Logger
}

func NewCompressor(log *zap.Logger) *Compressor {
	return &Compressor{log: log.Named("imaging")}
}

// Compress re-encodes input as a JPEG at or under the byte budget. Quality is
// bisected toward the highest value that fits; when even the quality floor
// overshoots, dimensions shrink and the search repeats. The total number of
// encode attempts is fixed, so adversarial inputs cannot loop. When the
// budget is unreachable the smallest encoding seen is returned together with
// ErrBudgetTooLow.
func (c *Compressor) Compress(input []byte, opts Options) (*Result, error) {
	if len(input) > MaxInputBytes {
		return nil, ErrInputTooLarge
	}

	target := opts.TargetBytes
	if target <= 0 {
		target = DefaultTargetBytes
	}
	maxDim := opts.MaxDim
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}

	src, format, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	img := scaleDown(src, maxDim)

	var (
		smallest *Result
		attempts int
	)

	encode := func(quality int) (*Result, error) {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
		attempts++
		b := img.Bounds()
		return &Result{
			Data:    buf.Bytes(),
			Quality: quality,
			Width:   b.Dx(),
			Height:  b.Dy(),
		}, nil
	}

	for attempts < maxAttempts {
		// Highest quality at or under target for the current dimensions.
		var fit *Result
		lo, hi := minQuality, startQuality
		for lo <= hi && attempts < maxAttempts {
			quality := (lo + hi) / 2
			candidate, err := encode(quality)
			if err != nil {
				return nil, err
			}
			if smallest == nil || len(candidate.Data) < len(smallest.Data) {
				smallest = candidate
			}
			if len(candidate.Data) <= target {
				fit = candidate
				lo = quality + 1
			} else {
				hi = quality - 1
			}
		}
		if fit != nil {
			fit.Attempts = attempts
			c.logResult(format, len(input), fit)
			return fit, nil
		}

		shrunk := scaleDown(img, int(float64(maxImageDim(img))*dimShrinkStep))
		if maxImageDim(shrunk) >= maxImageDim(img) {
			break
		}
		img = shrunk
	}

	if smallest == nil {
		return nil, ErrBudgetTooLow
	}
	smallest.Attempts = attempts
	if len(smallest.Data) <= target {
		c.logResult(format, len(input), smallest)
		return smallest, nil
	}
	return smallest, ErrBudgetTooLow
}

func (c *Compressor) logResult(format string, inputLen int, r *Result) {
	c.log.Debug("image compressed",
		zap.String("source_format", format),
		zap.Int("input_bytes", inputLen),
		zap.Int("output_bytes", len(r.Data)),
		zap.Int("quality", r.Quality),
		zap.Int("attempts", r.Attempts),
	)
}

func maxImageDim(img image.Image) int {
	b := img.Bounds()
	if b.Dx() > b.Dy() {
		return b.Dx()
	}
	return b.Dy()
}

// scaleDown resizes img so its longest edge is at most maxDim, preserving
// aspect ratio. Images already within bounds are returned as-is.
func scaleDown(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	longest := maxImageDim(img)
	if maxDim < 1 || longest <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longest)
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
