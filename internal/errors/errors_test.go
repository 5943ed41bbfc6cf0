package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSkyhookError_Error(t *testing.T) {
	err := New(ErrCategorySchema, CodeEmptySchema, "schema text has no columns")
	expected := "[SCHEMA:EMPTY_SCHEMA] schema text has no columns"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestSkyhookError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCategoryStorage, CodeDownloadFailed, "download failed", cause)
	expected := "[STORAGE:DOWNLOAD_FAILED] download failed: connection refused"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestSkyhookError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryDecode, CodeDecodeFailed, "bad buffer", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestSkyhookError_Is(t *testing.T) {
	err1 := New(ErrCategoryPredicate, CodeOpNotRecognized, "first")
	err2 := New(ErrCategoryPredicate, CodeOpNotRecognized, "second")
	err3 := New(ErrCategoryPredicate, CodeOpNotImplemented, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		code      string
		retryable bool
	}{
		{ErrCategoryStorage, CodeUploadFailed, true},
		{ErrCategoryStorage, CodeDownloadFailed, true},
		{ErrCategoryStorage, CodeObjectNotFound, false},
		{ErrCategorySchema, CodeEmptySchema, false},
		{ErrCategoryPredicate, CodeComparisonNotDefined, false},
		{ErrCategoryIndex, CodeIndexKeyCreationFailed, false},
		{ErrCategoryManifest, CodeCorruptionDetected, false},
		{ErrCategoryInternal, CodeUnexpected, false},
	}

	for _, tt := range tests {
		err := New(tt.category, tt.code, "test")
		if IsRetryable(err) != tt.retryable {
			t.Errorf("%s:%s retryable=%v, want %v", tt.category, tt.code, IsRetryable(err), tt.retryable)
		}
	}
}

func TestGetCategory(t *testing.T) {
	err := New(ErrCategoryRow, CodeRowIndexOOB, "row 9 of 3")
	if GetCategory(err) != ErrCategoryRow {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryRow)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-SkyhookError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryRow, CodeRowIndexOOB, "row 9 of 3")
	if GetCode(err) != CodeRowIndexOOB {
		t.Errorf("got %q, want %q", GetCode(err), CodeRowIndexOOB)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-SkyhookError should return empty code")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(ErrCategorySchema, CodeColIndexOOB, "column 12 of 4"))
	if !IsCode(err, CodeColIndexOOB) {
		t.Error("IsCode should see through fmt.Errorf wrapping")
	}
	if IsCode(err, CodeEmptySchema) {
		t.Error("IsCode matched the wrong code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ErrCategorySchema, CodeBadColInfoFormat, "bad column line")
	detailed := err.WithDetails(map[string]interface{}{"line": "0 4 1"})

	if detailed.Details["line"] != "0 4 1" {
		t.Error("WithDetails should set details")
	}
	// Original should be unmodified
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cause := fmt.Errorf("io error")

	s := NewSchemaError(CodeEmptySchema, "no columns")
	if s.Category != ErrCategorySchema || s.Code != CodeEmptySchema {
		t.Error("NewSchemaError mismatch")
	}

	p := NewPredicateError(CodeOpNotRecognized, "bad op")
	if p.Category != ErrCategoryPredicate {
		t.Error("NewPredicateError mismatch")
	}

	d := NewDecodeError(CodeDecodeFailed, "truncated", cause)
	if d.Category != ErrCategoryDecode || !errors.Is(d, cause) {
		t.Error("NewDecodeError mismatch")
	}

	st := NewStorageError(CodeUploadFailed, "s3 down", cause)
	if st.Category != ErrCategoryStorage || !errors.Is(st, cause) {
		t.Error("NewStorageError mismatch")
	}

	m := NewManifestError(CodePartitionNotFound, "gone", nil)
	if m.Category != ErrCategoryManifest {
		t.Error("NewManifestError mismatch")
	}

	c := NewConfigError("bad backend")
	if c.Category != ErrCategoryConfig || c.Code != CodeInvalidConfig {
		t.Error("NewConfigError mismatch")
	}

	i := NewInternalError("unexpected", cause)
	if i.Category != ErrCategoryInternal || i.Code != CodeUnexpected {
		t.Error("NewInternalError mismatch")
	}
}
