// Package errors provides structured error handling for ethraw.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitAuth     = 3 // Authentication failed
	ExitNotFound = 4 // Resource not found
)

// Error is the structured error type for ethraw.
type Error struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *Error) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &Error{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &Error{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Codec errors.
	ErrDecode = &Error{
		Code:     "DECODE_ERROR",
		Message:  "malformed encoding",
		ExitCode: ExitInput,
	}

	ErrParse = &Error{
		Code:     "PARSE_ERROR",
		Message:  "unparseable value",
		ExitCode: ExitInput,
	}

	// Address errors.
	ErrAddress = &Error{
		Code:     "ADDRESS_ERROR",
		Message:  "invalid address",
		ExitCode: ExitInput,
	}

	ErrChecksumMismatch = &Error{
		Code:     "CHECKSUM_MISMATCH",
		Message:  "address checksum does not match",
		ExitCode: ExitInput,
	}

	// Signature errors.
	ErrSignature = &Error{
		Code:     "SIGNATURE_ERROR",
		Message:  "invalid signature",
		ExitCode: ExitInput,
	}

	// State errors.
	ErrState = &Error{
		Code:     "STATE_ERROR",
		Message:  "operation not valid in current state",
		ExitCode: ExitInput,
	}

	// Key handling errors.
	ErrInvalidKey = &Error{
		Code:     "INVALID_KEY",
		Message:  "invalid private key",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &Error{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrKeyNotFound = &Error{
		Code:     "KEY_NOT_FOUND",
		Message:  "key file not found",
		ExitCode: ExitNotFound,
	}

	ErrDecryptionFailed = &Error{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong password or corrupted file",
		ExitCode: ExitAuth,
	}

	// Config errors.
	ErrConfigInvalid = &Error{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new Error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Message:    fmt.Sprintf("%s: %s", msg, e.Message),
			Details:    e.Details,
			Suggestion: e.Suggestion,
			Cause:      err,
			ExitCode:   e.ExitCode,
		}
	}

	return &Error{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Message:    e.Message,
			Details:    details,
			Suggestion: e.Suggestion,
			Cause:      e.Cause,
			ExitCode:   e.ExitCode,
		}
	}

	return &Error{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Message:    e.Message,
			Details:    e.Details,
			Suggestion: suggestion,
			Cause:      e.Cause,
			ExitCode:   e.ExitCode,
		}
	}

	return &Error{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
