package i18n

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrConfiguration = errors.New("invalid locale configuration")

// ConfigurationError reports a locale setup that cannot be used.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Registry is the ordered set of supported locales. The default locale is
// always first. A Registry is never modified after construction.
type Registry struct {
	locales []string
	index   map[string]int
}

// NewRegistry validates locales and moves def to the front. An empty def
// selects the first locale.
func NewRegistry(locales []string, def string) (*Registry, error) {
	if len(locales) == 0 {
		return nil, configErrorf("no locales configured")
	}

	def = strings.TrimSpace(def)
	if def == "" {
		def = strings.TrimSpace(locales[0])
	}

	ordered := make([]string, 0, len(locales))
	ordered = append(ordered, def)

	index := make(map[string]int, len(locales))
	found := false
	for _, code := range locales {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, configErrorf("empty locale code")
		}
		if strings.Contains(code, "/") {
			return nil, configErrorf("locale code %q contains a slash", code)
		}
		if _, dup := index[code]; dup {
			return nil, configErrorf("duplicate locale %q", code)
		}
		index[code] = -1

		if code == def {
			found = true
			continue
		}
		ordered = append(ordered, code)
	}
	if !found {
		return nil, configErrorf("default locale %q is not in %v", def, locales)
	}

	for i, code := range ordered {
		index[code] = i
	}

	return &Registry{locales: ordered, index: index}, nil
}

func (r *Registry) IsValid(code string) bool {
	_, ok := r.index[code]
	return ok
}

func (r *Registry) Default() string {
	return r.locales[0]
}

func (r *Registry) Locales() []string {
	return slices.Clone(r.locales)
}

// Position returns the registry position of code, or -1.
func (r *Registry) Position(code string) int {
	if i, ok := r.index[code]; ok {
		return i
	}
	return -1
}
