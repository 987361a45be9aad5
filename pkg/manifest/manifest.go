package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/olimci/kotoba/pkg/utils/fileutils"
	"golang.org/x/sync/errgroup"
)

var (
	ErrConflicts  = errors.New("conflicts")
	ErrUnsafePath = errors.New("unsafe artefact path")
)

// K is a typed key
type K[T any] string

// GetAs retrieves a value from the manifest as the specified type. Missing
// keys give the zero value.
func GetAs[T any](m *Manifest, k K[T]) T {
	if v, ok := m.Get(string(k)); ok {
		if vt, ok := v.(T); ok {
			return vt
		}
	}
	return *new(T)
}

func SetAs[T any](m *Manifest, k K[T], v T) {
	m.Set(string(k), v)
}

// New creates a new manifest
func New() *Manifest {
	return &Manifest{
		artefacts: make([]Artefact, 0),
		registry:  make(map[string]any),
	}
}

// Manifest represents a manifest of build artefacts, and a registry of build information
type Manifest struct {
	artefacts   []Artefact
	artefactsMu sync.Mutex

	registry   map[string]any
	registryMu sync.RWMutex
}

// Set sets a value in the registry
func (m *Manifest) Set(k string, v any) {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()

	m.registry[k] = v
}

// Get retrieves a value from the registry
func (m *Manifest) Get(k string) (any, bool) {
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()

	v, ok := m.registry[k]
	return v, ok
}

// Emit adds an artefact to the manifest
func (m *Manifest) Emit(a Artefact) {
	m.artefactsMu.Lock()
	defer m.artefactsMu.Unlock()

	m.artefacts = append(m.artefacts, a)
}

// Output describes one written artefact.
type Output struct {
	Claim   Claim
	Path    string
	Changed bool
}

// Build writes every artefact below the output directory. Files the
// manifest does not claim are left alone.
func (m *Manifest) Build(opts ...Option) ([]Output, error) {
	o := defaultOptions().apply(opts...)

	m.artefactsMu.Lock()
	defer m.artefactsMu.Unlock()

	artefacts, conflicts := makeArtefacts(m.artefacts)
	if len(conflicts) > 0 && !o.ignoreConflicts {
		targets := make([]string, 0, len(conflicts))
		for target, claims := range conflicts {
			owners := make([]string, len(claims))
			for i, c := range claims {
				owners[i] = c.Owner
			}
			targets = append(targets, fmt.Sprintf("%s (%s)", target, strings.Join(owners, ", ")))
		}
		slices.Sort(targets)
		return nil, fmt.Errorf("%w: %s", ErrConflicts, strings.Join(targets, "; "))
	}

	targets := make([]string, 0, len(artefacts))
	for target := range artefacts {
		if _, ok := cleanTarget(target); !ok {
			return nil, fmt.Errorf("%w: %q escapes %s", ErrUnsafePath, target, o.outputDir)
		}
		targets = append(targets, target)
	}
	slices.Sort(targets)

	outputs := make([]Output, len(targets))

	g, ctx := errgroup.WithContext(o.ctx)
	if o.maxWorkers > 0 {
		g.SetLimit(o.maxWorkers)
	}

	for i, target := range targets {
		a := artefacts[target]
		rel, _ := cleanTarget(target)
		full := filepath.Join(o.outputDir, filepath.FromSlash(rel))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			changed, err := fileutils.WriteAtomic(full, a.Builder)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", full, err)
			}

			outputs[i] = Output{Claim: a.Claim, Path: full, Changed: changed}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build: %w", err)
	}

	return outputs, nil
}
