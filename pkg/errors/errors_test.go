package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidViewport, "invalid width %q", "banana")

	if err.Code != ErrCodeInvalidViewport {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidViewport)
	}
	if err.Message != `invalid width "banana"` {
		t.Errorf("Message = %q", err.Message)
	}
	if want := `INVALID_VIEWPORT: invalid width "banana"`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch page 3")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want the cause", errors.Unwrap(err))
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through the wrap")
	}
	if want := "NETWORK_ERROR: fetch page 3: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"same code", New(ErrCodeCategoryNotFound, "no posts tagged poetry"), ErrCodeCategoryNotFound, true},
		{"different code", New(ErrCodeCategoryNotFound, "no posts tagged poetry"), ErrCodeNetwork, false},
		{"outer code wins", Wrap(ErrCodeNetwork, New(ErrCodeParse, "inner"), "outer"), ErrCodeNetwork, true},
		{"plain error", errors.New("plain"), ErrCodeNetwork, false},
		{"nil", nil, ErrCodeNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidPage, "page 0")); got != ErrCodeInvalidPage {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeInvalidPage)
	}
	if got := GetCode(errors.New("plain")); got != Code("") {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
	if got := GetCode(nil); got != Code("") {
		t.Errorf("GetCode(nil) = %v, want empty", got)
	}
}

func TestUserMessageStripsCode(t *testing.T) {
	err := New(ErrCodePageNotFound, "page 7 of 3 does not exist")
	if got := UserMessage(err); got != "page 7 of 3 does not exist" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	withRetry := &RateLimitedError{RetryAfter: 60}
	if want := "rate limited: retry after 60 seconds"; withRetry.Error() != want {
		t.Errorf("Error() = %q, want %q", withRetry.Error(), want)
	}

	bare := &RateLimitedError{}
	if want := "rate limited"; bare.Error() != want {
		t.Errorf("Error() = %q, want %q", bare.Error(), want)
	}
	if bare.Code() != ErrCodeRateLimited {
		t.Errorf("Code() = %v, want %v", bare.Code(), ErrCodeRateLimited)
	}
}
