package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 6), G: 120, B: uint8(y * 3), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := PrepareImage(buf.Bytes())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, minOCRHeight, img.Bounds().Dy())
	assert.Equal(t, minOCRHeight/2, img.Bounds().Dx())

	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, err := PrepareImage([]byte("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestIsSupportedImageType(t *testing.T) {
	assert.True(t, IsSupportedImageType("image/jpeg"))
	assert.True(t, IsSupportedImageType("IMAGE/PNG"))
	assert.False(t, IsSupportedImageType("application/pdf"))
}

func TestReceiptImageKey(t *testing.T) {
	key := ReceiptImageKey(42, "IMG_0001.JPG")
	assert.Regexp(t, regexp.MustCompile(`^receipts/42/[0-9a-f-]{36}\.jpg$`), key)
	assert.NotEqual(t, key, ReceiptImageKey(42, "IMG_0001.JPG"))
	assert.Regexp(t, regexp.MustCompile(`\.jpg$`), ReceiptImageKey(1, "noext"))
}
