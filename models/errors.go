package models

import "fmt"

// ErrorCode is a stable code for a codec failure, used for HTTP status
// mapping and for callers that branch on the failure kind.
type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = 0

	// ====== Input ======
	ErrCodeInvalidInput     ErrorCode = 1001
	ErrCodeCapacityExceeded ErrorCode = 1002

	// ====== Extraction ======
	ErrCodeNoHiddenData         ErrorCode = 2001
	ErrCodeAuthenticationFailed ErrorCode = 2002
	ErrCodeCorruptFrame         ErrorCode = 2003

	// ====== Carrier I/O ======
	ErrCodeIOError ErrorCode = 3001
)

// StegoError is the only error type returned from the codec layers.
type StegoError struct {
	Code ErrorCode
	Msg  string
}

func (e *StegoError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("stego error (%d)", e.Code)
	}
	return fmt.Sprintf("stego error (%d): %s", e.Code, e.Msg)
}

func NewError(code ErrorCode, msg string) *StegoError {
	return &StegoError{
		Code: code,
		Msg:  msg,
	}
}

func NewErrorf(code ErrorCode, format string, args ...any) *StegoError {
	return &StegoError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// AsStegoError is a safe type check
func AsStegoError(err error) (*StegoError, bool) {
	if err == nil {
		return nil, false
	}
	se, ok := err.(*StegoError)
	return se, ok
}

// CodeOf returns the error code, or ErrCodeUnknown for foreign errors.
func CodeOf(err error) ErrorCode {
	if se, ok := AsStegoError(err); ok {
		return se.Code
	}
	return ErrCodeUnknown
}
