package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedImage is returned when the upload is not a decodable photo
var ErrUnsupportedImage = errors.New("unsupported image")

// minOCRHeight is the height below which receipts are upscaled before OCR.
// Thermal print on small photos loses the decimal point otherwise.
const minOCRHeight = 1600

var supportedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/tiff",
	"image/bmp",
}

// IsSupportedImageType checks the upload content type
func IsSupportedImageType(contentType string) bool {
	for _, t := range supportedImageTypes {
		if strings.EqualFold(contentType, t) {
			return true
		}
	}
	return false
}

// PrepareImage decodes a receipt photo, applies its EXIF orientation,
// converts it to grayscale and upscales short images. The result is PNG.
func PrepareImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var out image.Image = imaging.Grayscale(img)
	if h := out.Bounds().Dy(); h > 0 && h < minOCRHeight {
		out = imaging.Resize(out, 0, minOCRHeight, imaging.Lanczos)
	}
	out = imaging.AdjustContrast(out, 20)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
