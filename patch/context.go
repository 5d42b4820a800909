package patch

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/erraggy/patchkit/bytecode"
)

// ErrCapabilityUnavailable is returned when a patch asks for a capability
// the run did not supply.
var ErrCapabilityUnavailable = errors.New("capability not supplied by this run")

// Context is the capability set handed to a patch's callbacks.
// A patch asks only for what it needs; the executor does not care which
// capabilities a patch uses.
type Context interface {
	// PatchName returns the name of the patch being run.
	PatchName() string
	// Bytecode returns the run's bytecode model.
	Bytecode() (bytecode.Model, error)
	// Resources returns the run's resource store.
	Resources() (ResourceStore, error)
	// Options returns the option values supplied to the patch.
	Options() Values
}

// Capabilities are the facilities a run supplies. Nil fields are unavailable.
type Capabilities struct {
	Bytecode  bytecode.Model
	Resources ResourceStore
}

// NewContext creates the Context for one patch in a run.
func NewContext(p *Patch, caps Capabilities, values Values) Context {
	return &runContext{patch: p, caps: caps, values: values}
}

type runContext struct {
	patch  *Patch
	caps   Capabilities
	values Values
}

func (c *runContext) PatchName() string {
	return c.patch.String()
}

func (c *runContext) Bytecode() (bytecode.Model, error) {
	if c.caps.Bytecode == nil {
		return nil, fmt.Errorf("patch %s: bytecode: %w", c.patch, ErrCapabilityUnavailable)
	}
	return c.caps.Bytecode, nil
}

func (c *runContext) Resources() (ResourceStore, error) {
	if c.caps.Resources == nil {
		return nil, fmt.Errorf("patch %s: resources: %w", c.patch, ErrCapabilityUnavailable)
	}
	return c.caps.Resources, nil
}

func (c *runContext) Options() Values {
	return c.values
}

// ResourceStore is a store of named resource files.
type ResourceStore interface {
	// Get returns the content stored at path.
	Get(path string) ([]byte, bool)
	// Put stores content at path, replacing any previous content.
	Put(path string, data []byte) error
	// Delete removes path. Deleting a missing path is not an error.
	Delete(path string) error
	// Paths returns all stored paths, sorted.
	Paths() []string
}

// MemoryResources is an in-memory ResourceStore.
// It is not safe for concurrent use.
type MemoryResources struct {
	files map[string][]byte
}

// Ensure MemoryResources implements ResourceStore at compile time.
var _ ResourceStore = (*MemoryResources)(nil)

// NewMemoryResources creates a store holding copies of files.
func NewMemoryResources(files map[string][]byte) *MemoryResources {
	r := &MemoryResources{files: make(map[string][]byte, len(files))}
	for path, data := range files {
		r.files[path] = slices.Clone(data)
	}
	return r
}

// Get returns a copy of the content stored at path.
func (r *MemoryResources) Get(path string) ([]byte, bool) {
	data, ok := r.files[path]
	if !ok {
		return nil, false
	}
	return slices.Clone(data), true
}

// Put stores a copy of data at path.
func (r *MemoryResources) Put(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("patch: resource path cannot be empty")
	}
	if r.files == nil {
		r.files = make(map[string][]byte)
	}
	r.files[path] = slices.Clone(data)
	return nil
}

// Delete removes path.
func (r *MemoryResources) Delete(path string) error {
	delete(r.files, path)
	return nil
}

// Paths returns all stored paths, sorted.
func (r *MemoryResources) Paths() []string {
	paths := slices.Collect(maps.Keys(r.files))
	sort.Strings(paths)
	return paths
}
