package build

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/olimci/kotoba/pkg/manifest"
	"github.com/tdewolff/minify/v2"
	minjson "github.com/tdewolff/minify/v2/json"
	minxml "github.com/tdewolff/minify/v2/xml"
)

// NewMinifier returns a post-processor that minifies XML and JSON
// artefacts, or nil when disabled.
func NewMinifier(enabled bool) manifest.PostProcessor {
	if !enabled {
		return nil
	}

	mimes := map[string]string{
		".xml":  "text/xml",
		".json": "application/json",
	}

	m := minify.New()
	m.AddFunc("text/xml", minxml.Minify)
	m.AddFunc("application/json", minjson.Minify)

	return func(claim manifest.Claim, next manifest.Builder) manifest.Builder {
		mime, ex := mimes[strings.ToLower(filepath.Ext(claim.Target))]
		if !ex {
			return next
		}

		return func(w io.Writer) error {
			x := m.Writer(mime, w)
			if err := next(x); err != nil {
				return err
			}
			return x.Close()
		}
	}
}
