package errors

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// MaxDiagramNameLength bounds diagram names, which end up in file names.
const MaxDiagramNameLength = 200

// ValidateDiagramName validates a diagram name before it is turned into a file name.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters or null bytes
//   - Maximum length of [MaxDiagramNameLength] characters
//
// Path separators are allowed here; the renderer's slug replaces them.
func ValidateDiagramName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidField, "diagram name cannot be empty").At("name")
	}

	if len(name) > MaxDiagramNameLength {
		return New(ErrCodeInvalidField, "diagram name too long (max %d characters)", MaxDiagramNameLength).At("name")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidField, "diagram name contains invalid control characters").At("name")
		}
	}

	return nil
}

// ValidateOutputDir checks that dir names an existing directory.
// The caller owns creation and teardown of the directory; this only verifies
// that a render into it can start.
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	for _, r := range dir {
		if r == '\x00' {
			return New(ErrCodeInvalidPath, "output directory contains invalid characters")
		}
	}

	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "resolve output directory %s", dir)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return New(ErrCodeInvalidPath, "output directory does not exist: %s", abs)
		}
		return Wrap(ErrCodeInvalidPath, err, "access output directory %s", abs)
	}

	if !info.IsDir() {
		return New(ErrCodeInvalidPath, "output path is not a directory: %s", abs)
	}

	return nil
}

// ValidateDescription validates a natural-language diagram description.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return New(ErrCodeInvalidInput, "diagram description cannot be empty")
	}
	return nil
}
