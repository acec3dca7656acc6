// Package codec encodes CLI dumps and decodes algorithm parameter files.
//
// Binary artifacts never go through a Codec; they use package persistence.
package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used for JSON dumps.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch strings.ToLower(name) {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "yaml", "yml":
		return YAML{}, true
	default:
		return nil, false
	}
}

// ForPath selects a codec by file extension. Unknown extensions fall back to
// Default.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}
	default:
		return Default
	}
}

// DecodeFile reads path and decodes it into v with the codec matching its
// extension.
func DecodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c := ForPath(path)
	if err := c.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec %s: decode %s: %w", c.Name(), path, err)
	}
	return nil
}
