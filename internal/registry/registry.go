package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"go.jacobcolvin.com/graphdoc/internal/mapping"
	"go.jacobcolvin.com/graphdoc/internal/model"
)

// Registry holds registered graph types and resolves the right one for a
// given file. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]map[int]*model.GraphType
	order []*model.GraphType
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byID: make(map[string]map[int]*model.GraphType)}
}

// Register adds gt to the registry. Registering the same (id, version)
// twice replaces the earlier entry.
func (r *Registry) Register(gt *model.GraphType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions, ok := r.byID[gt.ID]
	if !ok {
		versions = make(map[int]*model.GraphType)
		r.byID[gt.ID] = versions
	}

	if _, existed := versions[gt.Version]; !existed {
		r.order = append(r.order, gt)
	}

	versions[gt.Version] = gt
}

// LoadDir scans typeDir for graph-type subfolders (one per id, each
// containing v<N> version folders) and registers every graph type found.
func (r *Registry) LoadDir(typeDir string) error {
	entries, err := os.ReadDir(typeDir)
	if err != nil {
		return fmt.Errorf("read graph type directory %s: %w", typeDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		types, err := mapping.LoadFromFolder(filepath.Join(typeDir, entry.Name()))
		if err != nil {
			return err
		}

		for _, gt := range types {
			r.Register(gt)
		}
	}

	return nil
}

// Reload clears the registry. Callers typically follow with LoadDir to
// repopulate it, and must separately invalidate any compiled-schema or
// field-schema caches keyed by the graph types being replaced.
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]map[int]*model.GraphType)
	r.order = nil
}

// GetForFile returns the highest-versioned registered graph type whose
// FilePatterns match path.
func (r *Registry) GetForFile(path string) (model.GraphType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *model.GraphType

	for _, gt := range r.order {
		if !matchesAny(gt.FilePatterns, path) {
			continue
		}

		if best == nil || gt.Version > best.Version {
			best = gt
		}
	}

	if best == nil {
		return model.GraphType{}, false
	}

	return *best, true
}

// GetForFileVersion returns the graph type registered for path's matching
// id at exactly the requested version.
func (r *Registry) GetForFileVersion(path string, version int) (model.GraphType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, gt := range r.order {
		if gt.Version != version {
			continue
		}

		if matchesAny(gt.FilePatterns, path) {
			return *gt, true
		}
	}

	return model.GraphType{}, false
}

// IDs returns every registered graph type id, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err == nil && ok {
			return true
		}
	}

	return false
}
