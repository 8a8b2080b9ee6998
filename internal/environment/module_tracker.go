package environment

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glyphlang/typecore/internal/config"
)

type moduleState struct {
	reference ModuleReference
	modTime   time.Time
}

// ModuleTracker implements spec §4.3 layer 1: filesystem → module
// references. Scan walks a source root and reports what changed since
// the last scan, the way the teacher's Loader walks a package directory
// (internal/modules/loader.go's detectPackageExtension/hasSourceFiles)
// except stateful across calls so repeated scans diff against what was
// last seen rather than rediscovering the whole tree every time.
type ModuleTracker struct {
	mu    sync.Mutex
	known map[string]moduleState
}

func NewModuleTracker() *ModuleTracker {
	return &ModuleTracker{known: make(map[string]moduleState)}
}

// Scan walks root for source files (config.SourceFileExt) and returns the
// IncrementalUpdate items describing what changed since the previous
// Scan (spec §4.3.1 step 1).
func (m *ModuleTracker) Scan(root string) ([]IncrementalUpdate, error) {
	current := make(map[string]moduleState)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != config.SourceFileExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		current[path] = moduleState{reference: pathToModuleReference(rel), modTime: info.ModTime()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var updates []IncrementalUpdate
	for path, st := range current {
		prev, existed := m.known[path]
		switch {
		case !existed:
			updates = append(updates, IncrementalUpdate{Kind: ModuleAdded, Path: path, Reference: st.reference})
		case !prev.modTime.Equal(st.modTime):
			updates = append(updates, IncrementalUpdate{Kind: ModuleChanged, Path: path, Reference: st.reference})
		}
	}
	for path, prev := range m.known {
		if _, ok := current[path]; !ok {
			updates = append(updates, IncrementalUpdate{Kind: ModuleRemoved, Path: path, Reference: prev.reference})
		}
	}
	m.known = current
	return updates, nil
}

// pathToModuleReference turns a root-relative file path into a dotted
// module reference, e.g. "pkg/sub/mod.glyph" -> "pkg.sub.mod".
func pathToModuleReference(rel string) ModuleReference {
	trimmed := strings.TrimSuffix(rel, config.SourceFileExt)
	dotted := strings.ReplaceAll(trimmed, string(filepath.Separator), ".")
	dotted = strings.ReplaceAll(dotted, "/", ".")
	return ModuleReference(dotted)
}
