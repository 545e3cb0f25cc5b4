// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err:  &UserError{Message: "Cannot read log", Err: fmt.Errorf("file locked")},
			want: "Cannot read log: file locked",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Invalid input", Err: nil},
			want: "Invalid input",
		},
		{
			name: "empty message with underlying error",
			err:  &UserError{Message: "", Err: fmt.Errorf("some error")},
			want: ": some error",
		},
		{
			name: "empty message without underlying error",
			err:  &UserError{Message: "", Err: nil},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("UserError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")

	withErr := &UserError{Message: "test", Err: underlying}
	if withErr.Unwrap() != underlying {
		t.Error("Unwrap() should return the wrapped error")
	}

	withoutErr := &UserError{Message: "test"}
	if withoutErr.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no underlying error")
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		want     int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitFailed", ExitFailed, 1},
		{"ExitCancelled", ExitCancelled, 2},
		{"ExitInput", ExitInput, 3},
		{"ExitConfig", ExitConfig, 4},
		{"ExitIO", ExitIO, 5},
		{"ExitInternal", ExitInternal, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.exitCode != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.exitCode, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	underlying := fmt.Errorf("underlying error")

	t.Run("NewConfigError", func(t *testing.T) {
		e := NewConfigError("msg", "cause", "fix", underlying)
		if e.ExitCode != ExitConfig || e.Err == nil {
			t.Errorf("got %+v", e)
		}
	})

	t.Run("NewParseError", func(t *testing.T) {
		e := NewParseError("msg", "cause", underlying)
		if e.ExitCode != ExitFailed || e.Fix == "" {
			t.Errorf("got %+v", e)
		}
	})

	t.Run("NewAnalyzerError", func(t *testing.T) {
		e := NewAnalyzerError("Suspect", "boom", underlying)
		if !strings.Contains(e.Message, "Suspect") {
			t.Errorf("message should name the analyzer, got %q", e.Message)
		}
	})

	t.Run("NewCancelledError", func(t *testing.T) {
		e := NewCancelledError("cancelled")
		if e.ExitCode != ExitCancelled {
			t.Errorf("got %+v", e)
		}
	})

	t.Run("NewIOError", func(t *testing.T) {
		e := NewIOError("msg", "cause", underlying)
		if e.ExitCode != ExitIO {
			t.Errorf("got %+v", e)
		}
	})

	t.Run("NewInputError", func(t *testing.T) {
		e := NewInputError("msg", "cause", "fix")
		if e.ExitCode != ExitInput || e.Err != nil {
			t.Errorf("got %+v", e)
		}
	})

	t.Run("NewInternalError", func(t *testing.T) {
		e := NewInternalError("msg", "cause", "fix", underlying)
		if e.ExitCode != ExitInternal {
			t.Errorf("got %+v", e)
		}
	})
}

func TestErrorChain(t *testing.T) {
	t.Run("errors.Is finds sentinel", func(t *testing.T) {
		sentinel := fmt.Errorf("sentinel error")
		wrapped := fmt.Errorf("wrapped: %w", sentinel)
		userErr := NewIOError("io error", "cause", wrapped)

		if !errors.Is(userErr, sentinel) {
			t.Error("errors.Is should find sentinel error in chain")
		}
	})

	t.Run("errors.As extracts UserError", func(t *testing.T) {
		inner := NewConfigError("config error", "cause", "fix", nil)
		outer := NewIOError("io error", "cause", inner)

		var target *UserError
		if !errors.As(outer, &target) {
			t.Fatal("errors.As should extract UserError")
		}
		if target.ExitCode != ExitIO {
			t.Errorf("ExitCode = %d, want %d", target.ExitCode, ExitIO)
		}
	})
}

func TestUserError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want []string
	}{
		{
			name: "full error",
			err: &UserError{
				Message: "Cannot read crash log",
				Cause:   "The file was truncated mid-header",
				Fix:     "Re-run the crash generator",
			},
			want: []string{"Error: Cannot read crash log", "Cause: The file was truncated mid-header", "Fix:   Re-run the crash generator"},
		},
		{
			name: "minimal error",
			err:  &UserError{Message: "Something failed"},
			want: []string{"Error: Something failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(true)
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Format() output missing %q\nGot: %s", substr, got)
				}
			}
		})
	}
}

func TestUserError_Format_NoColor(t *testing.T) {
	old := os.Getenv("NO_COLOR")
	defer func() {
		if old != "" {
			os.Setenv("NO_COLOR", old)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()

	os.Setenv("NO_COLOR", "1")
	err := &UserError{Message: "Test error", Cause: "Test cause", Fix: "Test fix"}
	output := err.Format(false)

	if strings.Contains(output, "\x1b[") {
		t.Error("Format() output contains ANSI codes despite NO_COLOR being set")
	}
}

func TestUserError_ToJSON(t *testing.T) {
	err := &UserError{Message: "Invalid configuration", Cause: "Missing required field", Fix: "Run: scanner111 init", ExitCode: ExitConfig}
	got := err.ToJSON()

	if got.Error != err.Message || got.Cause != err.Cause || got.Fix != err.Fix || got.ExitCode != err.ExitCode {
		t.Errorf("ToJSON() = %+v", got)
	}
}

func TestFatalError_NilDoesNothing(t *testing.T) {
	FatalError(nil, false)
}
