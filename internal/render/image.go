package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register webp decoder
)

// maxSourcePixels caps the decoded size of a submitted photo; the header is
// checked before any pixel buffer is allocated.
const maxSourcePixels = 50_000_000

func (r *Renderer) thumbnail(value any) (*Image, error) {
	raw, err := imageBytes(value)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrImageDecode, cfg.Width, cfg.Height, maxSourcePixels)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), r.maxSide())
	out := src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	format, err = encode(&buf, out, format)
	if err != nil {
		return nil, fmt.Errorf("%w: re-encode %s: %v", ErrImageDecode, format, err)
	}
	return &Image{Data: buf.Bytes(), Format: format, Width: w, Height: h}, nil
}

// imageBytes accepts base64 text (padded or not) or raw bytes.
func imageBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty payload", ErrImageDecode)
		}
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, fmt.Errorf("%w: empty payload", ErrImageDecode)
		}
		if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
			s = s[i+len(";base64,"):]
		}
		if data, err := base64.StdEncoding.DecodeString(s); err == nil {
			return data, nil
		}
		data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %v", ErrImageDecode, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unsupported payload type %T", ErrImageDecode, value)
	}
}

// fitWithin shrinks w×h so neither side exceeds limit, keeping the aspect
// ratio. Images already inside the box are left alone.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(limit)/float64(w) + 0.5)
		return limit, max(1, nh)
	}
	nw := int(float64(w)*float64(limit)/float64(h) + 0.5)
	return max(1, nw), limit
}

// encode writes img in format and returns the format actually used; formats
// without an encoder fall back to png.
func encode(buf *bytes.Buffer, img image.Image, format string) (string, error) {
	switch format {
	case "jpeg":
		return format, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
	case "png":
		return format, png.Encode(buf, img)
	case "gif":
		return format, gif.Encode(buf, img, nil)
	case "bmp":
		return format, bmp.Encode(buf, img)
	case "tiff":
		return format, tiff.Encode(buf, img, nil)
	default:
		return "png", png.Encode(buf, img)
	}
}
