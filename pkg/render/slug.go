package render

import (
	"path/filepath"
	"strings"
)

// Extension is the file extension of every rendered artifact.
const Extension = ".png"

// Slug turns a diagram name into a file name stem: spaces become underscores
// and the result is lowercased. Path separators and other characters that are
// unsafe in file names are also replaced with underscores. An empty result
// becomes "diagram".
func Slug(name string) string {
	s := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, s)
	if strings.Trim(s, "._") == "" {
		return "diagram"
	}
	return s
}

// OutputPath returns the absolute path a diagram named name renders to inside dir.
func OutputPath(dir, name string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, Slug(name)+Extension), nil
}
