package build

import (
	"path/filepath"

	"github.com/olimci/kotoba/pkg/config"
)

// Layout is the set of paths a build reads and writes.
type Layout struct {
	Config string
	Source string
	Output string
}

// Watched lists the paths whose changes require a rebuild.
func (l Layout) Watched() []string {
	return []string{l.Source, l.Config}
}

// LoadLayout resolves the paths of the configured site. Relative paths in
// the config are taken from the config file's directory.
func LoadLayout(opts ...Option) (Layout, error) {
	o := defaultOptions().Apply(opts...)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return Layout{}, err
	}
	return layoutOf(cfg, o), nil
}

func layoutOf(cfg *config.Config, o *Options) Layout {
	base := filepath.Dir(o.configPath)

	l := Layout{
		Config: o.configPath,
		Source: resolvePath(base, cfg.Content.Source),
		Output: resolvePath(base, cfg.Build.Output),
	}
	if o.output != "" {
		l.Output = o.output
	}
	return l
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
