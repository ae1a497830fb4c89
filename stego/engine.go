package stego

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"

	"image-steganography-backend/bitstream"
	"image-steganography-backend/crypto"
	"image-steganography-backend/frame"
	"image-steganography-backend/models"
)

// PayloadKind classifies a decoded payload.
type PayloadKind string

const (
	KindText PayloadKind = "text"
	KindFile PayloadKind = "file"
)

// Request describes one embed operation. A non-empty Filename means the
// payload is the file in Data; otherwise Text is embedded.
type Request struct {
	Text     string
	Filename string
	Data     []byte
	Password string
	Compress bool
}

// Result is a decoded payload.
type Result struct {
	Kind     PayloadKind
	Text     string
	Filename string
	Data     []byte
}

// Engine composes the codec stages into encode and decode pipelines.
// It holds no per-call state, so one Engine may serve concurrent calls.
type Engine struct {
	pixels  *PixelEmbedder
	samples *SampleEmbedder
}

func NewEngine() *Engine {
	return &Engine{
		pixels:  NewPixelEmbedder(),
		samples: NewSampleEmbedder(),
	}
}

// PixelCapacity returns the carrier capacity in bits for a flat RGBA buffer.
func (e *Engine) PixelCapacity(pixels []byte) int {
	return e.pixels.Capacity(len(pixels) / ChannelsPerPixel)
}

// PCMCapacity returns the carrier capacity in bits for a PCM byte buffer.
func (e *Engine) PCMCapacity(pcm []byte) int {
	return e.samples.Capacity(len(pcm))
}

// EncodePixels embeds the request payload into a copy of the RGBA
// buffer. Validation and the capacity check happen before any bit is
// written, so a failed encode observes no mutation.
func (e *Engine) EncodePixels(pixels []byte, req *Request) ([]byte, error) {
	stream, err := e.buildStream(req, e.PixelCapacity(pixels))
	if err != nil {
		return nil, err
	}
	return e.pixels.Embed(pixels, stream)
}

// DecodePixels extracts, authenticates and classifies the payload
// hidden in the RGBA buffer.
func (e *Engine) DecodePixels(pixels []byte, password string) (*Result, error) {
	if len(pixels)%ChannelsPerPixel != 0 {
		return nil, models.NewErrorf(models.ErrCodeInvalidInput, "pixel buffer length %d is not a multiple of %d", len(pixels), ChannelsPerPixel)
	}
	return e.parseStream(e.pixels.Extract(pixels), password)
}

// EncodePCM is EncodePixels for a 16-bit PCM byte carrier.
func (e *Engine) EncodePCM(pcm []byte, req *Request) ([]byte, error) {
	stream, err := e.buildStream(req, e.PCMCapacity(pcm))
	if err != nil {
		return nil, err
	}
	return e.samples.Embed(pcm, stream)
}

// DecodePCM is DecodePixels for a 16-bit PCM byte carrier.
func (e *Engine) DecodePCM(pcm []byte, password string) (*Result, error) {
	return e.parseStream(e.samples.Extract(pcm), password)
}

func (e *Engine) buildStream(req *Request, capacity int) ([]byte, error) {
	var payload []byte
	var flags byte

	switch {
	case req.Filename != "":
		framed, err := frame.MarshalFrame(req.Filename, req.Data)
		if err != nil {
			return nil, err
		}
		payload = framed
		flags |= frame.FlagFile
	case req.Text != "":
		payload = []byte(req.Text)
	default:
		return nil, models.NewError(models.ErrCodeInvalidInput, "empty payload")
	}

	if req.Compress {
		packed, err := compressPayload(payload)
		if err != nil {
			return nil, models.NewErrorf(models.ErrCodeIOError, "compress payload: %v", err)
		}
		// Keep compression only when it actually pays for itself.
		if len(packed) < len(payload) {
			payload = packed
			flags |= frame.FlagCompressed
		}
	}

	var tagBits []byte
	if req.Password != "" {
		if err := crypto.ValidatePassword(req.Password); err != nil {
			return nil, err
		}
		tagBits = crypto.TagBits(req.Password)
		flags |= frame.FlagTag
	}

	payloadBits := bitstream.BytesToBits(payload)
	stream := frame.BuildHeader(flags, len(payloadBits))
	stream = append(stream, tagBits...)
	stream = append(stream, payloadBits...)

	if len(stream) > capacity {
		return nil, models.NewErrorf(models.ErrCodeCapacityExceeded, "stream needs %d bits, carrier holds %d", len(stream), capacity)
	}
	return stream, nil
}

func (e *Engine) parseStream(bits []byte, password string) (*Result, error) {
	flags, payloadBitLen, err := frame.ParseHeader(bits)
	if err != nil {
		return nil, err
	}
	body := bits[frame.HeaderBitLen:]

	if flags&frame.FlagTag != 0 {
		if password == "" {
			return nil, models.NewError(models.ErrCodeAuthenticationFailed, "carrier is password-protected but no password was supplied")
		}
		body, err = crypto.VerifyTag(body, password)
		if err != nil {
			return nil, err
		}
	} else if password != "" {
		return nil, models.NewError(models.ErrCodeAuthenticationFailed, "carrier has no password tag")
	}

	if payloadBitLen > len(body) {
		return nil, models.NewErrorf(models.ErrCodeCorruptFrame, "header declares %d payload bits, only %d available", payloadBitLen, len(body))
	}
	payload := bitstream.BitsToBytes(body[:payloadBitLen])

	if flags&frame.FlagCompressed != 0 {
		payload, err = decompressPayload(payload)
		if err != nil {
			return nil, err
		}
	}

	if flags&frame.FlagFile != 0 {
		pf, err := frame.UnmarshalFrame(payload)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindFile, Filename: pf.Filename, Data: pf.Data}, nil
	}
	return &Result{Kind: KindText, Text: string(payload)}, nil
}

func compressPayload(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressPayload(data []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewErrorf(models.ErrCodeCorruptFrame, "zstd payload: %v", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, models.NewErrorf(models.ErrCodeCorruptFrame, "zstd payload: %v", err)
	}
	return out, nil
}
