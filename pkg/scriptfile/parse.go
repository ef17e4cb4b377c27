// SPDX-License-Identifier: MPL-2.0

package scriptfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teammv/mvc/pkg/cueutil"
)

// DefaultFileName is the scripts file name inside the mvc config directory.
const DefaultFileName = "scripts.cue"

var (
	//go:embed scriptfile_schema.cue
	scriptfileSchema []byte

	// ErrUnsupportedFormat is returned for file extensions with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported scripts file format")
)

// Parse reads the scripts file at path. A file that does not exist yields an
// empty File rather than an error, so a fresh install behaves like an empty
// registry.
func Parse(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read scripts file at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes decodes scripts file content. The decoder is chosen from the
// extension of path: .cue (schema-validated), .yaml/.yml/.json, or .toml.
func ParseBytes(data []byte, path string) (*File, error) {
	var (
		f   *File
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		f, err = parseCUE(data, path)
	case ".yaml", ".yml", ".json":
		f, err = parseYAML(data, path)
	case ".toml":
		f, err = parseTOML(data, path)
	default:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, path)
	}
	if err != nil {
		return nil, err
	}

	f.FilePath = path
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func parseCUE(data []byte, path string) (*File, error) {
	result, err := cueutil.ParseAndDecode[File](scriptfileSchema, data, "#ScriptsFile", cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

func parseYAML(data []byte, path string) (*File, error) {
	var f File
	if len(bytes.TrimSpace(data)) == 0 {
		return &f, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func parseTOML(data []byte, path string) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}
