package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Configuration errors
	ErrConfigLoad         ErrorCode = "CONFIG_LOAD"
	ErrConfigParse        ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid      ErrorCode = "CONFIG_INVALID"
	ErrConfigAmbiguous    ErrorCode = "CONFIG_AMBIGUOUS"
	ErrContentTypeUnknown ErrorCode = "CONTENT_TYPE_UNKNOWN"
	ErrCategoryNotFound   ErrorCode = "CATEGORY_NOT_FOUND"
	ErrPriorityNotFound   ErrorCode = "PRIORITY_NOT_FOUND"

	// Input errors
	ErrSelectionInvalid ErrorCode = "SELECTION_INVALID"
	ErrVersionInvalid   ErrorCode = "VERSION_INVALID"
	ErrPackNameInvalid  ErrorCode = "PACK_NAME_INVALID"
	ErrCancelled        ErrorCode = "CANCELLED"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrFileMalformed ErrorCode = "FILE_MALFORMED"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrArchive       ErrorCode = "ARCHIVE"
)

// Category groups error codes by how a caller should react to them.
type Category string

const (
	CategoryUnknown Category = "unknown"
	// CategoryConfig errors are fatal: the static data is wrong and every
	// export touching it will fail the same way.
	CategoryConfig Category = "config"
	// CategoryIO errors are fatal to one export only.
	CategoryIO Category = "io"
	// CategoryInput errors come from the caller's request.
	CategoryInput Category = "input"
)

var categories = map[ErrorCode]Category{
	ErrConfigLoad:         CategoryConfig,
	ErrConfigParse:        CategoryConfig,
	ErrConfigInvalid:      CategoryConfig,
	ErrConfigAmbiguous:    CategoryConfig,
	ErrContentTypeUnknown: CategoryConfig,
	ErrCategoryNotFound:   CategoryConfig,
	ErrPriorityNotFound:   CategoryConfig,

	ErrSelectionInvalid: CategoryInput,
	ErrVersionInvalid:   CategoryInput,
	ErrPackNameInvalid:  CategoryInput,
	ErrCancelled:        CategoryInput,

	ErrFileAccess:    CategoryIO,
	ErrFileWrite:     CategoryIO,
	ErrFileMalformed: CategoryIO,
	ErrDirCreate:     CategoryIO,
	ErrArchive:       CategoryIO,
}

// PackError represents a structured error with code and details
type PackError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PackError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PackError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PackError) Is(target error) bool {
	var targetErr *PackError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PackError with the given code and message
func New(code ErrorCode, message string) *PackError {
	return &PackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PackError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PackError {
	return &PackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PackError
func Wrap(err error, code ErrorCode, message string) *PackError {
	if err == nil {
		return nil
	}
	return &PackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PackError {
	if err == nil {
		return nil
	}
	return &PackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PackError) WithDetail(key string, value interface{}) *PackError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var packErr *PackError
	if errors.As(err, &packErr) {
		return packErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PackError
func GetErrorCode(err error) ErrorCode {
	var packErr *PackError
	if errors.As(err, &packErr) {
		return packErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PackError
func GetErrorDetails(err error) map[string]interface{} {
	var packErr *PackError
	if errors.As(err, &packErr) {
		return packErr.Details
	}
	return nil
}

// CategoryOf classifies err by the outermost PackError in its chain.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if c, ok := categories[GetErrorCode(err)]; ok {
		return c
	}
	return CategoryUnknown
}

// IsFatalConfig reports whether err was caused by bad static configuration
// rather than by the request or the filesystem.
func IsFatalConfig(err error) bool {
	return CategoryOf(err) == CategoryConfig
}
