package errors

import (
	"testing"
)

func TestValidateCategoryKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "design", false},
		{"valid with dash", "design-systems", false},
		{"valid with numbers", "web3", false},
		{"valid all sentinel", "all", false},
		{"valid single char", "a", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 80)), true},
		{"uppercase", "Design", true},
		{"leading dash", "-design", true},
		{"trailing dash", "design-", true},
		{"spaces", "design systems", true},
		{"slash", "design/systems", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategoryKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCategoryKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCategory) {
				t.Errorf("ValidateCategoryKey(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateCardID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "65f2a1c89e7b4d001f3a2b91", false},
		{"valid slug", "post-welcome-to-the-blog", false},
		{"valid with dots", "post.2024.01", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"carriage return", "foo\rbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCardID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCardID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateViewportWidth(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"mobile", 375, false},
		{"breakpoint boundary", 767, false},
		{"desktop", 1440, false},
		{"minimum", 1, false},

		{"zero", 0, true},
		{"negative", -320, true},
		{"absurd", 99999, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewportWidth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewportWidth(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidViewport) {
				t.Errorf("ValidateViewportWidth(%d) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "out/layout.json", false},
		{"valid nested", "renders/2024/grid.svg", false},
		{"valid filename only", "grid.png", false},
		{"valid absolute", "/tmp/cardgrid/out.svg", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidCategory,
		ErrCodeInvalidCard,
		ErrCodeInvalidViewport,
		ErrCodeInvalidFormat,
		ErrCodeInvalidConfig,
		ErrCodeInvalidPage,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodePageNotFound,
		ErrCodeCategoryNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeRateLimited,
		ErrCodeParse,
		ErrCodeBadPayload,
		ErrCodeLimitExceeded,
		ErrCodeExhausted,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
