// Package stego to implement LSB embedding over pixel and sample carriers
package stego

import (
	"image-steganography-backend/models"
)

const (
	// ChannelsPerPixel is the flat buffer layout: R, G, B, A per pixel.
	ChannelsPerPixel = 4
	// CarrierChannels is how many of those carry payload bits. Alpha is
	// never touched so transparency survives bit-exact.
	CarrierChannels = 3
)

// PixelEmbedder writes and reads single bits in the least-significant
// bit of each R/G/B channel of a flat RGBA buffer, row-major.
type PixelEmbedder struct{}

func NewPixelEmbedder() *PixelEmbedder {
	return &PixelEmbedder{}
}

// Capacity returns the number of bits a buffer of pixelCount pixels can carry.
func (pe *PixelEmbedder) Capacity(pixelCount int) int {
	return pixelCount * CarrierChannels
}

// Embed returns a copy of pixels with the bits written into the R/G/B
// LSBs. Channels beyond the payload length are left unchanged; the
// input buffer is never mutated.
func (pe *PixelEmbedder) Embed(pixels []byte, bits []byte) ([]byte, error) {
	if len(pixels)%ChannelsPerPixel != 0 {
		return nil, models.NewErrorf(models.ErrCodeInvalidInput, "pixel buffer length %d is not a multiple of %d", len(pixels), ChannelsPerPixel)
	}
	pixelCount := len(pixels) / ChannelsPerPixel
	if len(bits) > pe.Capacity(pixelCount) {
		return nil, models.NewErrorf(models.ErrCodeCapacityExceeded, "payload needs %d bits, carrier holds %d", len(bits), pe.Capacity(pixelCount))
	}

	stego := make([]byte, len(pixels))
	copy(stego, pixels)

	bitIndex := 0
	for p := 0; p < pixelCount && bitIndex < len(bits); p++ {
		base := p * ChannelsPerPixel
		for c := 0; c < CarrierChannels && bitIndex < len(bits); c++ {
			stego[base+c] = (stego[base+c] & 0xFE) | (bits[bitIndex] & 1)
			bitIndex++
		}
	}

	return stego, nil
}

// Extract reads the LSB of every R/G/B channel in the same order Embed
// writes them. It always returns full capacity; truncating to the real
// payload is the caller's job via the stream header.
func (pe *PixelEmbedder) Extract(pixels []byte) []byte {
	pixelCount := len(pixels) / ChannelsPerPixel
	bits := make([]byte, 0, pe.Capacity(pixelCount))
	for p := range pixelCount {
		base := p * ChannelsPerPixel
		for c := range CarrierChannels {
			bits = append(bits, pixels[base+c]&1)
		}
	}
	return bits
}

// SampleEmbedder is the PCM counterpart: one bit in the LSB of every
// sample byte, in order.
type SampleEmbedder struct{}

func NewSampleEmbedder() *SampleEmbedder {
	return &SampleEmbedder{}
}

func (se *SampleEmbedder) Capacity(sampleBytes int) int {
	return sampleBytes
}

func (se *SampleEmbedder) Embed(pcm []byte, bits []byte) ([]byte, error) {
	if len(bits) > se.Capacity(len(pcm)) {
		return nil, models.NewErrorf(models.ErrCodeCapacityExceeded, "payload needs %d bits, carrier holds %d", len(bits), se.Capacity(len(pcm)))
	}

	stego := make([]byte, len(pcm))
	copy(stego, pcm)
	for i, bit := range bits {
		stego[i] = (stego[i] & 0xFE) | (bit & 1)
	}
	return stego, nil
}

func (se *SampleEmbedder) Extract(pcm []byte) []byte {
	bits := make([]byte, len(pcm))
	for i, b := range pcm {
		bits[i] = b & 1
	}
	return bits
}
