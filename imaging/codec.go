// Package imaging decodes cover images into flat RGBA buffers and
// encodes stego buffers back into lossless formats.
package imaging

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	// Cover decode registration. JPEG and GIF are accepted as covers on
	// input only; output is always PNG or BMP so the LSBs survive.
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/bmp"

	"image-steganography-backend/models"
)

// Carrier is a decoded cover image: flat RGBA bytes, 4 per pixel, row-major.
// Channel values are non-premultiplied; premultiplied storage would
// rescale channels of translucent pixels on re-encode and destroy the
// embedded LSBs.
type Carrier struct {
	Pixels []byte
	Width  int
	Height int
	Format string // source format as reported by image.Decode
}

// Decode parses PNG, BMP, JPEG or GIF data and normalizes it to flat RGBA.
func Decode(data []byte) (*Carrier, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewErrorf(models.ErrCodeIOError, "decode image: %v", err)
	}
	nrgba := toNRGBA(img)
	return &Carrier{
		Pixels: nrgba.Pix,
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Format: format,
	}, nil
}

// toNRGBA copies any image.Image into an *image.NRGBA with bounds starting at (0,0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func toImage(pixels []byte, width, height int) (*image.NRGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, models.NewErrorf(models.ErrCodeInvalidInput, "pixel buffer length %d does not match %dx%d RGBA", len(pixels), width, height)
	}
	return &image.NRGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// EncodePNG serializes a flat RGBA buffer as PNG.
func EncodePNG(pixels []byte, width, height int) ([]byte, error) {
	img, err := toImage(pixels, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, models.NewErrorf(models.ErrCodeIOError, "encode PNG: %v", err)
	}
	return buf.Bytes(), nil
}

// EncodeBMP serializes a flat RGBA buffer as BMP. Only used for opaque
// carriers (BMP covers), where the encoding is lossless.
func EncodeBMP(pixels []byte, width, height int) ([]byte, error) {
	img, err := toImage(pixels, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, models.NewErrorf(models.ErrCodeIOError, "encode BMP: %v", err)
	}
	return buf.Bytes(), nil
}
