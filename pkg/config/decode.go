package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var ErrUnknownKeys = errors.New("unknown config keys")

// decodeFile decodes path into v by extension. Keys that do not map onto v
// are an error.
func decodeFile(path string, v any) error {
	ext := strings.ToLower(filepath.Ext(path))

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch ext {
	case "", ".toml":
		md, err := toml.Decode(string(b), v)
		if err != nil {
			return err
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return fmt.Errorf("%w: %v", ErrUnknownKeys, undec)
		}
		return nil
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			if strings.Contains(err.Error(), "not found in type") {
				return fmt.Errorf("%w: %w", ErrUnknownKeys, err)
			}
			return err
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			if err == nil {
				return fmt.Errorf("unexpected extra YAML document")
			}
			return err
		}
		return nil
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if strings.HasPrefix(err.Error(), "json: unknown field") {
				return fmt.Errorf("%w: %w", ErrUnknownKeys, err)
			}
			return err
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			if err == nil {
				return fmt.Errorf("unexpected extra content after JSON document")
			}
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported config file type %q (supported: .toml, .yaml, .yml, .json)", ext)
	}
}
