package printing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"strings"
	"unicode"
)

// ErrSignatureDecode is returned when a signature payload cannot be turned
// into an image. The renderer recovers from it with a placeholder text.
var ErrSignatureDecode = errors.New("signature payload could not be decoded")

// ErrImageDecode is returned by DecodeImage for unusable image payloads
var ErrImageDecode = errors.New("image payload could not be decoded")

// Image size limits; anything larger is rejected before a full decode
const (
	maxImageWidth  = 4096
	maxImageHeight = 4096
)

// DecodedImage is a validated PNG or JPEG payload
type DecodedImage struct {
	Data   []byte
	Format string // "png" or "jpeg"
	Width  int
	Height int
}

// ContentType returns the MIME type of the image
func (d DecodedImage) ContentType() string {
	return "image/" + d.Format
}

// Extension returns the usual file extension without a dot
func (d DecodedImage) Extension() string {
	if d.Format == "jpeg" {
		return "jpg"
	}
	return d.Format
}

// DecodeImage decodes a raw base64 string or a data URL. When the payload
// contains a comma only the part after the first comma is used. Padded
// standard base64 is tried first, then the unpadded form.
func DecodeImage(payload string) (*DecodedImage, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	payload = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrImageDecode)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
		}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrImageDecode, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxImageWidth || cfg.Height > maxImageHeight {
		return nil, fmt.Errorf("%w: dimensions %dx%d out of range", ErrImageDecode, cfg.Width, cfg.Height)
	}

	return &DecodedImage{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// DecodeSignature decodes a signature payload into image bytes that the PDF
// writer accepts, together with the writer's image type. The image is
// re-encoded as an 8-bit non-interlaced PNG because the writer rejects
// interlaced and 16-bit PNGs.
func DecodeSignature(payload string) ([]byte, string, error) {
	decoded, err := DecodeImage(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSignatureDecode, err)
	}

	img, _, err := image.Decode(bytes.NewReader(decoded.Data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSignatureDecode, err)
	}

	bounds := img.Bounds()
	normalized := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(normalized, normalized.Bounds(), img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSignatureDecode, err)
	}
	return buf.Bytes(), "PNG", nil
}
