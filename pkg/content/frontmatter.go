package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoFrontmatter            = errors.New("no frontmatter")
	ErrFailedToParseFrontmatter = errors.New("failed to parse frontmatter")
)

type format int

const (
	formatNone format = iota
	formatYAML
	formatTOML
	formatJSON
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// ParseFrontmatter decodes the leading YAML (---), TOML (+++) or JSON
// object block of doc and returns the remaining body.
func ParseFrontmatter(doc []byte) (Data, []byte, error) {
	b := bytes.TrimPrefix(doc, bom)

	kind, payload, body := splitFrontmatter(b)

	var (
		data Data
		raw  = make(map[string]any)
	)

	switch kind {
	case formatYAML:
		if err := yaml.Unmarshal(payload, &data); err != nil {
			return Data{}, nil, fmt.Errorf("%w: %w", ErrFailedToParseFrontmatter, err)
		}
		if err := yaml.Unmarshal(payload, &raw); err != nil {
			return Data{}, nil, fmt.Errorf("%w: %w", ErrFailedToParseFrontmatter, err)
		}
	case formatTOML:
		if err := toml.Unmarshal(payload, &data); err != nil {
			return Data{}, nil, fmt.Errorf("%w: %w", ErrFailedToParseFrontmatter, err)
		}
		if err := toml.Unmarshal(payload, &raw); err != nil {
			return Data{}, nil, fmt.Errorf("%w: %w", ErrFailedToParseFrontmatter, err)
		}
	case formatJSON:
		if err := json.Unmarshal(payload, &data); err != nil {
			return Data{}, nil, fmt.Errorf("%w: %w", ErrFailedToParseFrontmatter, err)
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return Data{}, nil, fmt.Errorf("%w: %w", ErrFailedToParseFrontmatter, err)
		}
	default:
		return Data{}, nil, ErrNoFrontmatter
	}

	for _, k := range knownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		data.Extra = raw
	}

	return data, body, nil
}

func splitFrontmatter(b []byte) (format, []byte, []byte) {
	switch {
	case len(b) == 0:
		return formatNone, nil, nil
	case b[0] == '{':
		return scanJSON(b)
	}

	first, rest := cutLine(b)
	var kind format
	switch string(bytes.TrimRight(first, " \t\r")) {
	case "---":
		kind = formatYAML
	case "+++":
		kind = formatTOML
	default:
		return formatNone, nil, nil
	}

	fence := bytes.TrimRight(first, " \t\r")
	for i := 0; i < len(rest); {
		line, _ := cutLine(rest[i:])
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), fence) {
			end := i + len(line)
			if end < len(rest) {
				end++
			}
			return kind, rest[:i], rest[end:]
		}
		i += len(line) + 1
	}

	return formatNone, nil, nil
}

// cutLine splits b at the first newline, dropping it.
func cutLine(b []byte) ([]byte, []byte) {
	line, rest, _ := bytes.Cut(b, []byte{'\n'})
	return line, rest
}

// scanJSON finds the end of the object opening b, honouring strings.
func scanJSON(b []byte) (format, []byte, []byte) {
	depth := 0
	inStr, escaped := false, false

	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}

		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				body := b[i+1:]
				body = bytes.TrimPrefix(body, []byte{'\r'})
				body = bytes.TrimPrefix(body, []byte{'\n'})
				return formatJSON, b[:i+1], body
			}
		}
	}

	return formatNone, nil, nil
}
