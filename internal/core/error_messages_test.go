package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	headerErr := ValidateHeader(RawTable{{"INVALID HEADER"}, {"x"}})

	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "read error keeps import message",
			err:         newReadError(errors.New("zip: not a valid zip file")),
			wantCode:    "FILE002",
			wantMessage: MsgReadFailed,
		},
		{
			name:        "insufficient rows",
			err:         &ImportError{Kind: KindInsufficientRows, Message: MsgInsufficientRows},
			wantCode:    "IMP001",
			wantMessage: MsgInsufficientRows,
		},
		{
			name:        "header mismatch keeps column detail",
			err:         headerErr,
			wantCode:    "IMP002",
			wantMessage: `Invalid file format. Column 1 should be "ORDER ID" but found "INVALID HEADER"`,
		},
		{
			name:        "wrapped gateway error",
			err:         fmt.Errorf("handler: %w", newGatewayError(errors.New("dial tcp: connection refused"))),
			wantCode:    "INV001",
			wantMessage: MsgGatewayFailed,
		},
		{
			name:        "busy limiter",
			err:         ErrTooManyImports,
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "file too large maps correctly",
			err:         errors.New("file too large: 200MB exceeds limit"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "max bytes reader",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "unsupported type",
			err:         errors.New(`unsupported file type: "orders.pdf"`),
			wantCode:    "FILE003",
			wantMessage: "File type is not supported",
		},
		{
			name:        "deadline",
			err:         errors.New("context deadline exceeded"),
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("NO FILE PROVIDED"),
			wantCode:    "FILE004",
			wantMessage: "No file was selected",
		},
		{
			name:        "missing warehouse",
			err:         errors.New("missing warehouse id"),
			wantCode:    "UPL001",
			wantMessage: "No warehouse was selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyImports)

	expected := "System is busy processing other imports (Code: UPL002). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "import error is user facing", err: newGatewayError(errors.New("x")), want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("rate limit hit for 10.0.0.1")
		userErr := NewUserError(techErr)

		if userErr.Error() != "Too many requests" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}

func TestImportError(t *testing.T) {
	cause := errors.New("boom")
	err := newGatewayError(cause)

	if !errors.Is(err, cause) {
		t.Error("ImportError should unwrap to its cause")
	}
	if !errors.Is(err, ErrGateway) {
		t.Error("ImportError should match its kind sentinel")
	}
	if errors.Is(err, ErrRead) {
		t.Error("ImportError should not match another kind")
	}
	if got := KindOf(err); got != KindGateway {
		t.Errorf("KindOf() = %q, want %q", got, KindGateway)
	}
	if got := KindOf(cause); got != "" {
		t.Errorf("KindOf(plain error) = %q, want empty", got)
	}
	if want := MsgGatewayFailed + ": boom"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
