// Package errors provides structured error types for the SkyhookDM
// query engine. All errors carry a category, a stable code, a message,
// and a retryable flag so callers can classify failures without
// matching on message strings.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by engine component.
type ErrorCategory string

const (
	ErrCategorySchema    ErrorCategory = "SCHEMA"
	ErrCategoryPredicate ErrorCategory = "PREDICATE"
	ErrCategoryDecode    ErrorCategory = "DECODE"
	ErrCategoryRow       ErrorCategory = "ROW"
	ErrCategoryIndex     ErrorCategory = "INDEX"
	ErrCategoryStorage   ErrorCategory = "STORAGE"
	ErrCategoryManifest  ErrorCategory = "MANIFEST"
	ErrCategoryConfig    ErrorCategory = "CONFIG"
	ErrCategoryInternal  ErrorCategory = "INTERNAL"
)

// Error codes for each category. The codes are part of the engine's
// contract: hosts dispatch on them, so they never change meaning.
const (
	// Schema codes
	CodeEmptySchema          = "EMPTY_SCHEMA"
	CodeBadColInfoFormat     = "BAD_COL_INFO_FORMAT"
	CodeBadColInfoConversion = "BAD_COL_INFO_CONVERSION"
	CodeUnsupportedDataType  = "UNSUPPORTED_DATA_TYPE"
	CodeUnknownDataType      = "UNKNOWN_DATA_TYPE"
	CodeColIndexOOB          = "COL_INDEX_OOB"

	// Predicate codes
	CodeComparisonNotDefined   = "COMPARISON_NOT_DEFINED"
	CodeRegexPatternNotSet     = "REGEX_PATTERN_NOT_SET"
	CodeOpNotRecognized        = "OP_NOT_RECOGNIZED"
	CodeOpNotImplemented       = "OP_NOT_IMPLEMENTED"
	CodeUnsupportedAggDataType = "UNSUPPORTED_AGG_DATA_TYPE"

	// Decode and row codes
	CodeDecodeFailed = "DECODE_FAILED"
	CodeRowIndexOOB  = "ROW_INDEX_OOB"

	// Index codes
	CodeIndexDecodeFailed          = "INDEX_DECODE_FAILED"
	CodeIndexExtractFailed         = "INDEX_EXTRACT_FAILED"
	CodeIndexUnsupportedColType    = "INDEX_UNSUPPORTED_COL_TYPE"
	CodeIndexColTypeNotImplemented = "INDEX_COL_TYPE_NOT_IMPLEMENTED"
	CodeIndexUnsupportedNumCols    = "INDEX_UNSUPPORTED_NUM_COLS"
	CodeIndexUnsupportedAggCol     = "INDEX_UNSUPPORTED_AGG_COL"
	CodeIndexKeyCreationFailed     = "INDEX_KEY_CREATION_FAILED"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Manifest codes
	CodePartitionNotFound  = "PARTITION_NOT_FOUND"
	CodeCorruptionDetected = "CORRUPTION_DETECTED"

	// Config codes
	CodeInvalidConfig = "INVALID_CONFIG"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// SkyhookError is the structured error type used throughout the engine.
type SkyhookError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *SkyhookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *SkyhookError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *SkyhookError) Is(target error) bool {
	var t *SkyhookError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new SkyhookError.
func New(category ErrorCategory, code, message string) *SkyhookError {
	return &SkyhookError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new SkyhookError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *SkyhookError {
	return &SkyhookError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *SkyhookError) WithDetails(details map[string]interface{}) *SkyhookError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var se *SkyhookError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a SkyhookError.
func GetCategory(err error) ErrorCategory {
	var se *SkyhookError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a SkyhookError.
func GetCode(err error) string {
	var se *SkyhookError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code string) bool {
	return GetCode(err) == code
}

// isRetryable determines if an error code is transient. Only storage
// transport failures qualify; semantic errors never do.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeUploadFailed:
		return true
	case category == ErrCategoryStorage && code == CodeDownloadFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewSchemaError(code, message string) *SkyhookError {
	return New(ErrCategorySchema, code, message)
}

func NewPredicateError(code, message string) *SkyhookError {
	return New(ErrCategoryPredicate, code, message)
}

func NewDecodeError(code, message string, cause error) *SkyhookError {
	return Wrap(ErrCategoryDecode, code, message, cause)
}

func NewRowError(code, message string) *SkyhookError {
	return New(ErrCategoryRow, code, message)
}

func NewIndexError(code, message string) *SkyhookError {
	return New(ErrCategoryIndex, code, message)
}

func NewStorageError(code, message string, cause error) *SkyhookError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewManifestError(code, message string, cause error) *SkyhookError {
	return Wrap(ErrCategoryManifest, code, message, cause)
}

func NewConfigError(message string) *SkyhookError {
	return New(ErrCategoryConfig, CodeInvalidConfig, message)
}

func NewInternalError(message string, cause error) *SkyhookError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
