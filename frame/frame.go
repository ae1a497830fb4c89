// Package frame builds and parses the embedded stream layout.
//
// Stream layout, bit-encoded:
//
//	marker   16 bits  1111111111111110 — absence means no hidden data
//	flags     8 bits  FlagTag | FlagFile | FlagCompressed
//	bitLen   32 bits  big-endian payload bit count (tag excluded)
//	tag     512 bits  only when FlagTag is set
//	payload  bitLen bits
//
// The marker is the classic end-of-data sentinel moved to the front of
// the stream: extraction reads an explicit length instead of scanning
// for a terminator, so a sentinel-looking run inside the payload can
// never truncate it.
package frame

import (
	"encoding/binary"

	"image-steganography-backend/bitstream"
	"image-steganography-backend/models"
)

const (
	// Marker is the 16-bit stream marker pattern.
	Marker uint16 = 0xFFFE

	FlagTag        byte = 1 << 0 // password tag precedes the payload
	FlagFile       byte = 1 << 1 // payload is a file frame, not text
	FlagCompressed byte = 1 << 2 // payload bytes are zstd-compressed

	flagsKnown = FlagTag | FlagFile | FlagCompressed

	MarkerBitLen = 16
	// HeaderBitLen: marker(16) + flags(8) + payload bit length(32)
	HeaderBitLen = MarkerBitLen + 8 + 32

	// MaxFilenameLen bounds the filename length field of a file frame.
	MaxFilenameLen = 255
)

// PayloadFrame is the self-describing layout for an embedded file.
type PayloadFrame struct {
	Filename string
	Data     []byte
}

// MarkerBits returns the marker as a bit sequence.
func MarkerBits() []byte {
	bits := make([]byte, MarkerBitLen)
	for i := range bits {
		bits[i] = byte(Marker >> (MarkerBitLen - 1 - i) & 1)
	}
	return bits
}

// ScanMarker returns the index of the first occurrence of the marker
// pattern within bits, or -1 when absent.
func ScanMarker(bits []byte) int {
	marker := MarkerBits()
	for i := 0; i+MarkerBitLen <= len(bits); i++ {
		match := true
		for j, m := range marker {
			if bits[i+j]&1 != m {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// BuildHeader returns the bit-encoded stream header.
func BuildHeader(flags byte, payloadBitLen int) []byte {
	header := make([]byte, 7)
	binary.BigEndian.PutUint16(header[0:2], Marker)
	header[2] = flags
	binary.BigEndian.PutUint32(header[3:7], uint32(payloadBitLen))
	return bitstream.BytesToBits(header)
}

// ParseHeader validates the leading stream header and returns the flags
// and declared payload bit length.
func ParseHeader(bits []byte) (byte, int, error) {
	if len(bits) < HeaderBitLen {
		return 0, 0, models.NewError(models.ErrCodeNoHiddenData, "carrier too small to hold a stream header")
	}
	header := bitstream.BitsToBytes(bits[:HeaderBitLen])
	if binary.BigEndian.Uint16(header[0:2]) != Marker {
		return 0, 0, models.NewError(models.ErrCodeNoHiddenData, "stream marker not found")
	}
	flags := header[2]
	if flags&^flagsKnown != 0 {
		return 0, 0, models.NewErrorf(models.ErrCodeCorruptFrame, "unknown flag bits: %08b", flags)
	}
	payloadBitLen := int(binary.BigEndian.Uint32(header[3:7]))
	return flags, payloadBitLen, nil
}

// MarshalFrame lays out a file payload as bytes: 32-bit big-endian
// filename length, filename, 32-bit big-endian data length, data.
func MarshalFrame(filename string, data []byte) ([]byte, error) {
	name := []byte(filename)
	if len(name) == 0 || len(name) > MaxFilenameLen {
		return nil, models.NewErrorf(models.ErrCodeInvalidInput, "filename length must be 1-%d bytes, got %d", MaxFilenameLen, len(name))
	}

	payload := make([]byte, 0, 8+len(name)+len(data))
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(name)))
	payload = append(payload, name...)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(data)))
	payload = append(payload, data...)
	return payload, nil
}

// UnmarshalFrame parses a byte-level file frame.
func UnmarshalFrame(payload []byte) (*PayloadFrame, error) {
	if len(payload) < 4 {
		return nil, models.NewError(models.ErrCodeCorruptFrame, "frame shorter than filename length field")
	}
	nameLen := int(binary.BigEndian.Uint32(payload[0:4]))
	if nameLen == 0 || nameLen > MaxFilenameLen {
		return nil, models.NewErrorf(models.ErrCodeCorruptFrame, "invalid filename length: %d", nameLen)
	}
	if len(payload) < 4+nameLen+4 {
		return nil, models.NewErrorf(models.ErrCodeCorruptFrame, "frame too short for %d-byte filename", nameLen)
	}
	filename := string(payload[4 : 4+nameLen])

	dataLen := int(binary.BigEndian.Uint32(payload[4+nameLen : 4+nameLen+4]))
	dataStart := 4 + nameLen + 4
	if dataStart+dataLen > len(payload) {
		return nil, models.NewErrorf(models.ErrCodeCorruptFrame, "frame declares %d data bytes, only %d available", dataLen, len(payload)-dataStart)
	}

	data := make([]byte, dataLen)
	copy(data, payload[dataStart:dataStart+dataLen])
	return &PayloadFrame{Filename: filename, Data: data}, nil
}

// FrameFile is the bit-level form of MarshalFrame.
func FrameFile(filename string, data []byte) ([]byte, error) {
	payload, err := MarshalFrame(filename, data)
	if err != nil {
		return nil, err
	}
	return bitstream.BytesToBits(payload), nil
}

// ParseFrame is the bit-level form of UnmarshalFrame.
func ParseFrame(bits []byte) (*PayloadFrame, error) {
	return UnmarshalFrame(bitstream.BitsToBytes(bits))
}
