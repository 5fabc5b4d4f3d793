package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "complaint not found"},
			want: "complaint not found",
		},
		{
			name: "error with cause",
			err:  &AppError{Code: ErrCodeInternal, Message: "failed to list notices", Cause: errors.New("boom")},
			want: "failed to list notices: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Wrap(cause), cause) = false, want true")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  ErrorCode
		check func(error) bool
	}{
		{"not found", NotFound("x"), ErrCodeNotFound, IsNotFound},
		{"not foundf", NotFoundf("leave %s", "l1"), ErrCodeNotFound, IsNotFound},
		{"conflict", Conflict("x"), ErrCodeConflict, IsConflict},
		{"conflictf", Conflictf("email %s", "a@b.c"), ErrCodeConflict, IsConflict},
		{"validation", Validation("x"), ErrCodeValidation, IsValidation},
		{"validationf", Validationf("bad %d", 1), ErrCodeValidation, IsValidation},
		{"foreign key", ForeignKey("x"), ErrCodeForeignKey, IsForeignKey},
		{"unauthorized", Unauthorized("x"), ErrCodeUnauthorized, IsUnauthorized},
		{"forbidden", Forbidden("x"), ErrCodeForbidden, IsForbidden},
		{"internal", Internal("x"), ErrCodeInternal, IsInternal},
		{"internalf", Internalf("x %s", "y"), ErrCodeInternal, IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if !tt.check(tt.err) {
				t.Errorf("predicate returned false for %v", tt.err)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if GetCode(wrapped) != tt.code {
				t.Errorf("GetCode(wrapped) = %v, want %v", GetCode(wrapped), tt.code)
			}
		})
	}
}

func TestNotfFormatting(t *testing.T) {
	err := NotFoundf("complaint %s not found", "c1")
	if err.Message != "complaint c1 not found" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "email is required")
	if GetField(err) != "email" {
		t.Errorf("GetField() = %q, want email", GetField(err))
	}
	if GetField(errors.New("plain")) != "" {
		t.Errorf("GetField(plain) should be empty")
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Errorf("Wrap(nil) should be nil")
	}
	if err := Wrapf(errors.New("a"), ErrCodeTimeout, "op %s", "b"); err.Message != "op b" || !IsTimeout(err) {
		t.Errorf("Wrapf() = %+v", err)
	}
}

func TestPublicMessage(t *testing.T) {
	if got := PublicMessage(Forbidden("admin only"), "fallback"); got != "admin only" {
		t.Errorf("PublicMessage(AppError) = %q", got)
	}
	if got := PublicMessage(errors.New("secret detail"), "fallback"); got != "fallback" {
		t.Errorf("PublicMessage(plain) = %q", got)
	}
	if IsCanceled(errors.New("x")) {
		t.Errorf("IsCanceled(plain) should be false")
	}
}
