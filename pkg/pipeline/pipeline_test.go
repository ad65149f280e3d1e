package pipeline

import (
	"testing"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"html", false},
		{"svg", false},
		{"png", false},
		{"json", false},
		{"invalid", true},
		{"HTML", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"html", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"html", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateMode(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"", false}, // empty follows the page container
		{"masonry", false},
		{"pile", false},
		{"cascade", true},
		{"Masonry", true}, // case-sensitive
	}

	for _, tt := range tests {
		err := ValidateMode(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{
		URL: "https://blog.test/",
	}

	if err := opts.ValidateForFetch(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	// Check defaults were set
	if opts.Pages != DefaultPages {
		t.Errorf("Pages should be %d, got %d", DefaultPages, opts.Pages)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForFetch(t *testing.T) {
	// Missing URL
	opts := Options{Pages: 2}
	if err := opts.ValidateForFetch(); err == nil {
		t.Error("Missing URL should fail")
	}

	// Explicit page count is kept
	opts = Options{URL: "https://blog.test/", Pages: 7}
	if err := opts.ValidateForFetch(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Pages != 7 {
		t.Errorf("Pages should stay 7, got %d", opts.Pages)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{
		URL: "https://blog.test/",
	}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalPages := opts.Pages
	originalWidth := opts.Width
	originalFormats := len(opts.Formats)

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Pages != originalPages {
		t.Error("Pages changed on second call")
	}
	if opts.Width != originalWidth {
		t.Error("Width changed on second call")
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %f, got %f", DefaultWidth, opts.Width)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatHTML {
		t.Errorf("Formats should be [html], got %v", opts.Formats)
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	opts := Options{Mode: "pile", Width: 960, Seed: 7}
	keyOpts := opts.LayoutKeyOpts()

	if keyOpts.Mode != "pile" {
		t.Errorf("Mode should be pile, got %s", keyOpts.Mode)
	}
	if keyOpts.Width != 960 {
		t.Errorf("Width should be 960, got %d", keyOpts.Width)
	}
	if keyOpts.Seed != 7 {
		t.Errorf("Seed should be 7, got %d", keyOpts.Seed)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Labels: true, Scale: 3}

	keyOpts := opts.ArtifactKeyOpts(FormatPNG)
	if keyOpts.Format != FormatPNG {
		t.Errorf("Format should be png, got %s", keyOpts.Format)
	}
	if !keyOpts.Labels {
		t.Error("Labels should carry through")
	}
	if keyOpts.Scale != 3 {
		t.Errorf("Scale should be 3, got %f", keyOpts.Scale)
	}
}
