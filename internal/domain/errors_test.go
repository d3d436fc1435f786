package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("no such table: games")
	wrapped := NewAppError(CodeInternal, "list games failed", cause)

	if got, want := wrapped.Error(), "list games failed: no such table: games"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected the cause to be reachable through errors.Is")
	}

	bare := NewDisallowedFieldError("Password")
	if got, want := bare.Error(), `field "Password" is not allowed`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if bare.Unwrap() != nil {
		t.Error("expected no wrapped error")
	}
}

// classifiers lists every IsXxx helper by the code it recognises.
var classifiers = map[int]func(error) bool{
	CodeNotFound:              IsNotFound,
	CodeAlreadyExists:         IsAlreadyExists,
	CodeValidation:            IsValidation,
	CodeInternal:              IsInternal,
	CodeUnsupportedEntityType: IsUnsupportedEntityType,
	CodeDisallowedField:       IsDisallowedField,
	CodeInvalidFilterValue:    IsInvalidFilterValue,
	CodeInvalidPageRequest:    IsInvalidPageRequest,
	CodeInvalidFilterSyntax:   IsInvalidFilterSyntax,
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   int
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{"not found", ErrNotFound, CodeNotFound, http.StatusNotFound, "", ""},
		{"already exists", ErrAlreadyExists, CodeAlreadyExists, http.StatusConflict, "", ""},
		{"validation", ErrValidation, CodeValidation, http.StatusBadRequest, "", ""},
		{"internal", ErrInternal, CodeInternal, http.StatusInternalServerError, "", ""},
		{"unsupported entity", NewUnsupportedEntityTypeError("Console"), CodeUnsupportedEntityType, http.StatusBadRequest, "", "Console"},
		{"disallowed field", NewDisallowedFieldError("Password"), CodeDisallowedField, http.StatusBadRequest, "Password", ""},
		{"invalid value", NewInvalidFilterValueError("DataUscita", "31/02/2024"), CodeInvalidFilterValue, http.StatusBadRequest, "DataUscita", "31/02/2024"},
		{"invalid page", NewInvalidPageRequestError("page_number must be at least 1"), CodeInvalidPageRequest, http.StatusBadRequest, "", ""},
		{"invalid syntax", NewInvalidFilterSyntaxError("unbalanced parenthesis", errors.New("1:7: unexpected EOF")), CodeInvalidFilterSyntax, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Fatalf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if tt.err.Field != tt.wantField || tt.err.Value != tt.wantValue {
				t.Errorf("Field/Value = %q/%q, want %q/%q", tt.err.Field, tt.err.Value, tt.wantField, tt.wantValue)
			}

			// Classification must survive wrapping by callers further up.
			wrapped := fmt.Errorf("games: %w", tt.err)
			for code, is := range classifiers {
				if got, want := is(wrapped), code == tt.wantCode; got != want {
					t.Errorf("classifier for code %d = %v, want %v", code, got, want)
				}
			}
			if got := HTTPStatusCode(wrapped); got != tt.wantStatus {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestErrorClassification_ForeignErrors(t *testing.T) {
	for _, err := range []error{nil, errors.New("connection refused"), &AppError{Code: 99, Message: "unknown"}} {
		for code, is := range classifiers {
			if is(err) {
				t.Errorf("classifier for code %d matched %v", code, err)
			}
		}
		if got := HTTPStatusCode(err); got != http.StatusInternalServerError {
			t.Errorf("HTTPStatusCode(%v) = %d, want 500", err, got)
		}
	}
}

func TestNewAppError_FreshInstanceMatchesSentinelCode(t *testing.T) {
	err := NewAppError(CodeNotFound, "review not found", nil)
	if !IsNotFound(err) {
		t.Error("expected a fresh not-found error to classify as not found")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to compare identity, not code")
	}
}
