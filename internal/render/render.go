// Package render turns raw attribute values into spreadsheet-ready payloads.
package render

import (
	"errors"
	"fmt"
	"time"

	"resighting-export/internal/schema"
)

var (
	// ErrMalformedTimestamp indicates a timestamp-epoch value that is not an integer.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrImageDecode indicates an image payload that is not valid base64 or not a
	// supported image.
	ErrImageDecode = errors.New("image decode error")
)

// TimestampLayout is month/day/year hour:minute:second.
const TimestampLayout = "01/02/2006 15:04:05"

// Payload is a rendered cell value. Exactly one of Value or Image is meaningful;
// an Image payload has a nil Value.
type Payload struct {
	Value any
	Image *Image
}

// Image is a re-encoded thumbnail ready to embed.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Extension returns the file extension spreadsheet writers key pictures on.
func (i *Image) Extension() string {
	if i.Format == "jpeg" {
		return ".jpg"
	}
	return "." + i.Format
}

// Renderer converts values by kind. The zero value renders timestamps in
// time.Local and caps thumbnails at MaxThumbnail.
type Renderer struct {
	Location *time.Location
	MaxSide  int
}

// MaxThumbnail bounds both thumbnail dimensions.
const MaxThumbnail = 300

// New returns a Renderer formatting timestamps in loc.
func New(loc *time.Location) *Renderer {
	return &Renderer{Location: loc, MaxSide: MaxThumbnail}
}

// Render converts value according to kind.
func (r *Renderer) Render(value any, kind schema.Kind) (Payload, error) {
	switch kind {
	case schema.KindText:
		return Payload{Value: value}, nil
	case schema.KindNumeric:
		return Payload{Value: numeric(value)}, nil
	case schema.KindTimestampEpoch:
		s, err := r.timestamp(value)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Value: s}, nil
	case schema.KindImage:
		img, err := r.thumbnail(value)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Image: img}, nil
	default:
		return Payload{}, fmt.Errorf("unsupported field kind %q", kind)
	}
}

func (r *Renderer) timestamp(value any) (string, error) {
	epoch, ok := toInt64(value)
	if !ok {
		return "", fmt.Errorf("%w: %v (%T)", ErrMalformedTimestamp, value, value)
	}
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epoch, 0).In(loc).Format(TimestampLayout), nil
}

func (r *Renderer) maxSide() int {
	if r.MaxSide <= 0 {
		return MaxThumbnail
	}
	return r.MaxSide
}
