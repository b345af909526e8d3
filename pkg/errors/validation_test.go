package errors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDiagramName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Basic Web App", false},
		{"valid with slash", "Web/Mobile", false},
		{"valid unicode", "Überblick", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", MaxDiagramNameLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDiagramName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDiagramName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidField) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidField)
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"existing dir", dir, false},
		{"empty", "", true},
		{"missing", filepath.Join(dir, "missing"), true},
		{"file", file, true},
		{"null byte", dir + "\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputDir(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateDescription(t *testing.T) {
	if err := ValidateDescription("a web app with a database"); err != nil {
		t.Errorf("ValidateDescription() error = %v", err)
	}
	for _, in := range []string{"", " \n\t"} {
		if err := ValidateDescription(in); !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateDescription(%q) = %v, want INVALID_INPUT", in, err)
		}
	}
}
