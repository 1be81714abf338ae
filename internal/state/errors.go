package state

import (
	"errors"
	"fmt"
)

// CodecErrorCode categorizes decode failures.
type CodecErrorCode string

const (
	// ErrCodeUnknownSchemaVersion indicates a payload version outside [1, CurrentVersion].
	ErrCodeUnknownSchemaVersion CodecErrorCode = "UNKNOWN_SCHEMA_VERSION"

	// ErrCodeMalformedPayload indicates text that does not have the expected structure.
	ErrCodeMalformedPayload CodecErrorCode = "MALFORMED_PAYLOAD"

	// ErrCodeUnresolvedReference indicates a name missing from the game data.
	ErrCodeUnresolvedReference CodecErrorCode = "UNRESOLVED_REFERENCE"
)

// CodecError is returned by every decode path.
type CodecError struct {
	Code    CodecErrorCode
	Message string
	Err     error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code CodecErrorCode) bool {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsUnknownSchemaVersion reports whether err is an unknown-version failure.
func IsUnknownSchemaVersion(err error) bool { return hasCode(err, ErrCodeUnknownSchemaVersion) }

// IsMalformedPayload reports whether err is a structural decode failure.
func IsMalformedPayload(err error) bool { return hasCode(err, ErrCodeMalformedPayload) }

// IsUnresolvedReference reports whether err names missing game data.
func IsUnresolvedReference(err error) bool { return hasCode(err, ErrCodeUnresolvedReference) }

func unknownVersion(version int) *CodecError {
	return &CodecError{
		Code:    ErrCodeUnknownSchemaVersion,
		Message: fmt.Sprintf("schema version %d not in [1, %d]", version, CurrentVersion),
	}
}

func malformed(err error, format string, args ...any) *CodecError {
	return &CodecError{Code: ErrCodeMalformedPayload, Message: fmt.Sprintf(format, args...), Err: err}
}

func unresolved(err error, format string, args ...any) *CodecError {
	return &CodecError{Code: ErrCodeUnresolvedReference, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrUnknownHandle is returned for group or row handles not in the State.
var ErrUnknownHandle = errors.New("unknown handle")
