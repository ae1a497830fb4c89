// Package audio decodes and encodes WAV carriers.
//
// WAV is the only audio carrier: it is lossless, so embedded LSBs
// survive until extraction. Lossy formats are deliberately unsupported.
package audio

import (
	"bytes"
	"io"

	"github.com/aler9/writerseeker"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"image-steganography-backend/models"
)

const BitsInByte = 8

// DecodeWAV parses a 16-bit PCM WAV file and returns its samples as
// little-endian bytes, two per sample.
func DecodeWAV(data []byte) ([]byte, *models.CarrierMetadata, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, models.NewErrorf(models.ErrCodeIOError, "decode WAV: %v", err)
	}
	if decoder.BitDepth != 16 {
		return nil, nil, models.NewErrorf(models.ErrCodeIOError, "only 16-bit PCM WAV is supported, got %d-bit", decoder.BitDepth)
	}
	channels := buf.Format.NumChannels
	if channels == 0 {
		return nil, nil, models.NewError(models.ErrCodeIOError, "WAV reports zero channels")
	}

	pcm := make([]byte, len(buf.Data)*2)
	for i, s := range buf.Data {
		v := uint16(int16(s))
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}

	samplesPerChannel := len(buf.Data) / channels
	meta := &models.CarrierMetadata{
		Kind:       "audio",
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		BitDepth:   16,
		Duration:   float64(samplesPerChannel) / float64(buf.Format.SampleRate),
		TotalBytes: len(pcm),
	}
	return pcm, meta, nil
}

// EncodeWAV serializes little-endian 16-bit PCM bytes back into a WAV file.
func EncodeWAV(pcm []byte, meta *models.CarrierMetadata) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, models.NewError(models.ErrCodeInvalidInput, "PCM data length must be even for 16-bit samples")
	}

	sampleCount := len(pcm) / 2
	samples := make([]int, sampleCount)
	for i := range sampleCount {
		samples[i] = int(int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: meta.Channels,
			SampleRate:  meta.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: meta.BitDepth,
	}

	ws := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(ws, meta.SampleRate, meta.BitDepth, meta.Channels, 1)
	if err := encoder.Write(buf); err != nil {
		return nil, models.NewErrorf(models.ErrCodeIOError, "encode WAV: %v", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, models.NewErrorf(models.ErrCodeIOError, "close WAV encoder: %v", err)
	}

	out, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, models.NewErrorf(models.ErrCodeIOError, "read WAV data: %v", err)
	}
	return out, nil
}
