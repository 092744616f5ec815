package model

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ErrCodeDataUnavailable   = "DATA_UNAVAILABLE"
	ErrCodeDivisionUndefined = "DIVISION_UNDEFINED"
	ErrCodeFormat            = "FORMAT_ERROR"
	ErrCodeConfig            = "CONFIG_ERROR"
)

// Sentinels for errors.Is.
var (
	ErrDataUnavailable   = errors.New("data unavailable")
	ErrDivisionUndefined = errors.New("division undefined")
	ErrFormat            = errors.New("malformed value")
	ErrConfig            = errors.New("invalid configuration")
)

// Error is a coded dashboard error.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel belonging to the error code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeDataUnavailable:
		return target == ErrDataUnavailable
	case ErrCodeDivisionUndefined:
		return target == ErrDivisionUndefined
	case ErrCodeFormat:
		return target == ErrFormat
	case ErrCodeConfig:
		return target == ErrConfig
	}
	return false
}

// NewDataUnavailableError wraps a store or query failure. It is fatal to the
// page load.
func NewDataUnavailableError(message string, cause error) error {
	return &Error{Code: ErrCodeDataUnavailable, Message: message, Cause: cause}
}

// NewFormatError reports a malformed numeric cell.
func NewFormatError(table string, row int, column string, cause error) error {
	return &Error{
		Code:    ErrCodeFormat,
		Message: fmt.Sprintf("%s row %d column %q", table, row, column),
		Cause:   cause,
	}
}

// NewConfigError reports an invalid configuration value.
func NewConfigError(message string) error {
	return &Error{Code: ErrCodeConfig, Message: message}
}
