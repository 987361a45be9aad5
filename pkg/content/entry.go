package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry is one content page. ID is the slash-separated path of the source
// file relative to the content root, without extension.
type Entry struct {
	ID     string
	Source string
	Data   Data
}

// Data is the frontmatter of an entry.
type Data struct {
	Title       string            `toml:"title" yaml:"title" json:"title"`
	Description string            `toml:"description" yaml:"description" json:"description"`
	Permalink   string            `toml:"permalink" yaml:"permalink" json:"permalink"`
	Page        string            `toml:"page" yaml:"page" json:"page"`
	Alternates  map[string]string `toml:"alternates" yaml:"alternates" json:"alternates"`
	Draft       bool              `toml:"draft" yaml:"draft" json:"draft"`
	UpdatedAt   Date              `toml:"updatedAt" yaml:"updatedAt" json:"updatedAt"`

	// Extra holds every frontmatter key not listed above.
	Extra map[string]any `toml:"-" yaml:"-" json:"-"`
}

var knownKeys = []string{"title", "description", "permalink", "page", "alternates", "draft", "updatedAt"}

// Published drops drafts.
func Published(entries []*Entry) []*Entry {
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Data.Draft {
			out = append(out, e)
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date accepts an RFC 3339 timestamp, a local datetime or a bare date.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

func (d *Date) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		p, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = p
		return nil
	default:
		return fmt.Errorf("invalid date type %T", v)
	}
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", node.Line)
	}
	if node.Value == "" || node.Tag == "!!null" {
		return nil
	}
	p, err := ParseDate(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = p
	return nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}
