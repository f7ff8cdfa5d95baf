package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes.
//
// EmptyFile and ParseError are the import failures, NoFieldsChosen is the
// column-selection validation failure, WriteRejected and ReadCorrupt are the
// storage failures. The remaining codes cover configuration and internal faults.
const (
	CodeEmptyFile      = "EMPTY_FILE"
	CodeParseError     = "PARSE_ERROR"
	CodeNoFieldsChosen = "NO_FIELDS_CHOSEN"
	CodeWriteRejected  = "WRITE_REJECTED"
	CodeReadCorrupt    = "READ_CORRUPT"
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Common error constructors
func EmptyFile(message string) *AppError {
	return New(CodeEmptyFile, message)
}

func ParseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeParseError,
		Message: message,
		Cause:   cause,
	}
}

func NoFieldsChosen(message string) *AppError {
	return New(CodeNoFieldsChosen, message)
}

func WriteRejected(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeWriteRejected,
		Message: message,
		Cause:   cause,
	}
}

func ReadCorrupt(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeReadCorrupt,
		Message: message,
		Cause:   cause,
	}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// IsImportFailure reports whether err belongs to the import failure family.
func IsImportFailure(err error) bool {
	code := GetCode(err)
	return code == CodeEmptyFile || code == CodeParseError
}

// IsStorageFailure reports whether err belongs to the storage failure family.
func IsStorageFailure(err error) bool {
	code := GetCode(err)
	return code == CodeWriteRejected || code == CodeReadCorrupt
}
