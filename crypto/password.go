// Package crypto derives and verifies password authentication tags.
//
// The tag authenticates that the right password was supplied at
// extraction time. It is not encryption: the payload itself is embedded
// as-is.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"image-steganography-backend/bitstream"
	"image-steganography-backend/models"
)

// TagBitLen is the bit-encoded tag length: 64 hex characters, 8 bits each.
const TagBitLen = sha256.Size * 2 * 8

// MaxPasswordLen bounds accepted password lengths.
const MaxPasswordLen = 256

// DeriveTag computes the hex digest of the password's UTF-8 bytes.
func DeriveTag(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// TagBits returns the bit-encoded tag for the password.
func TagBits(password string) []byte {
	return bitstream.EncodeText(DeriveTag(password))
}

// VerifyTag recomputes the tag for password, compares it against the
// leading TagBitLen bits of extracted, and returns the remainder.
func VerifyTag(extracted []byte, password string) ([]byte, error) {
	if len(extracted) < TagBitLen {
		return nil, models.NewError(models.ErrCodeAuthenticationFailed, "extracted data shorter than password tag")
	}
	want := TagBits(password)
	if subtle.ConstantTimeCompare(extracted[:TagBitLen], want) != 1 {
		return nil, models.NewError(models.ErrCodeAuthenticationFailed, "password tag mismatch")
	}
	return extracted[TagBitLen:], nil
}

// ValidatePassword validates a password supplied at encode time.
func ValidatePassword(password string) error {
	if len(password) > MaxPasswordLen {
		return models.NewErrorf(models.ErrCodeInvalidInput, "password length cannot exceed %d bytes", MaxPasswordLen)
	}
	return nil
}
