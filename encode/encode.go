// Package encode writes rasterized pages in the delivery formats.
package encode

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format 是输出格式。
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	// PDF is produced by the vector renderer, not by Encode.
	PDF Format = "pdf"
)

// DefaultQuality is the JPEG quality used for delivery.
const DefaultQuality = 85

// ErrUnknownFormat 表示无法识别的格式名。
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts a format name or a file extension with or without the
// leading dot ("jpg", ".tif").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext returns the conventional file extension including the dot.
func (f Format) Ext() string {
	switch f {
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tif"
	default:
		return "." + string(f)
	}
}

// Options 控制编码参数。
type Options struct {
	// Quality is the JPEG quality 1..100; zero means DefaultQuality.
	Quality int
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts Options) error {
	if img == nil {
		return errors.New("encode: nil image")
	}
	var err error
	switch f {
	case JPEG:
		q := opts.Quality
		if q == 0 {
			q = DefaultQuality
		}
		if q < 1 || q > 100 {
			return fmt.Errorf("encode: jpeg quality %d out of range", q)
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case PDF:
		return fmt.Errorf("encode: %s is a vector format", f)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}
