// Package bitstream converts text and bytes to bit sequences and back.
//
// A bit sequence is a []byte whose elements are 0 or 1, most significant
// bit of each source byte first. Text is encoded through its UTF-8 bytes,
// so any Go string survives a round trip.
package bitstream

// EncodeText converts text to its bit sequence, 8 bits per UTF-8 byte.
func EncodeText(text string) []byte {
	return BytesToBits([]byte(text))
}

// DecodeText converts a bit sequence back to text. A trailing group
// shorter than 8 bits is discarded.
func DecodeText(bits []byte) string {
	return string(BitsToBytes(bits))
}

func BytesToBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

func BitsToBytes(bits []byte) []byte {
	bytes := make([]byte, 0, len(bits)/8)
	for i := 0; i+8 <= len(bits); i += 8 {
		var b byte
		for j := range 8 {
			b = (b << 1) | (bits[i+j] & 1)
		}
		bytes = append(bytes, b)
	}
	return bytes
}
