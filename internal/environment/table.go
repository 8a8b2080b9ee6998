// Package environment implements the layered environment stack (spec C9,
// §4.3): ten read-only memoized views, each a pure function over the one
// below it, wired together with dependency tracking so a change at one
// layer invalidates exactly the downstream keys that read it.
package environment

import (
	"sync"

	"github.com/glyphlang/typecore/internal/config"
	"github.com/glyphlang/typecore/internal/logging"
)

// Trigger identifies one (layer, key) cache entry — the unit the update
// protocol (§4.3.1) invalidates.
type Trigger struct {
	Layer string
	Key   string
}

// Query threads the currently-computing trigger through nested Table.Get
// calls, the way the teacher threads a `visited map[string]bool` through
// resolveTypeAliasWithCycleCheck — except here what's threaded is "who is
// asking", not "what have I already seen", so an upstream table can record
// a dependency edge against the caller rather than detect a cycle.
type Query struct {
	Track   bool
	trigger Trigger
}

// NewQuery starts a fresh top-level query (spec §4.3's root of a read),
// e.g. "type of expression E at location L". track should be true for any
// real caller's read: it's what lets a later ApplyUpdates find its way
// back to invalidate this read's result. false is only for reads that
// deliberately shouldn't leave a dependency edge behind (e.g. forcing a
// table to produce without attributing the read to any consumer).
func NewQuery(track bool) *Query {
	return &Query{Track: track}
}

func (q *Query) withTrigger(layer, key string) *Query {
	if q == nil {
		return &Query{trigger: Trigger{Layer: layer, Key: key}}
	}
	return &Query{Track: q.Track, trigger: Trigger{Layer: layer, Key: key}}
}

type cached[V any] struct {
	value      V
	generation string
}

// ProduceFunc computes the value for key, reading upstream tables through
// q so dependency edges get recorded correctly (spec §4.3: "a
// produce_value pure function over its upstream layer").
type ProduceFunc[V any] func(q *Query, key string) V

// Table is one EnvironmentTable layer (spec §4.3): (key, value) memoized,
// keyed by string since every layer's key — a module reference, a class
// name, a qualified attribute name — has a natural string form.
type Table[V any] struct {
	mu         sync.Mutex
	name       string
	cache      map[string]cached[V]
	dependents map[string][]Trigger
	produce    ProduceFunc[V]
	lazy       bool
	genToken   func() string
	log        *logging.Logger
}

// Option configures a Table at construction.
type Option[V any] func(*Table[V])

// WithGenerationTokens stamps every produced value with gen() (spec
// §4.3.1, §8 property 9's "generation" — minted via uuid.NewString by
// callers that want cache-correctness assertions).
func WithGenerationTokens[V any](gen func() string) Option[V] {
	return func(t *Table[V]) { t.genToken = gen }
}

// WithLogger attaches a logger for cache-invalidation tracing.
func WithLogger[V any](l *logging.Logger) Option[V] {
	return func(t *Table[V]) { t.log = l }
}

// Eager disables lazy recomputation: New's default is lazy (recompute on
// next read), matching config.Default().LazyIncremental; Eager is used
// when a caller's Config sets lazy_incremental = false (§4.3.1).
func Eager[V any]() Option[V] {
	return func(t *Table[V]) { t.lazy = false }
}

// New builds a layer named name, producing values via produce.
func New[V any](name string, produce ProduceFunc[V], opts ...Option[V]) *Table[V] {
	t := &Table[V]{
		name:       name,
		cache:      make(map[string]cached[V]),
		dependents: make(map[string][]Trigger),
		produce:    produce,
		lazy:       true,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Name returns the layer's name, used as the Layer field of a Trigger
// recorded against it.
func (t *Table[V]) Name() string { return t.name }

// IsLazy reports whether this table defers recomputation of an
// invalidated key until its next read, rather than recomputing eagerly.
func (t *Table[V]) IsLazy() bool { return t.lazy }

// Get returns the memoized value for key, producing and caching it on a
// miss. When q.Track is set, this table records a dependency from q's
// trigger onto key, so a later Invalidate(key) returns that trigger.
func (t *Table[V]) Get(q *Query, key string) V {
	t.mu.Lock()
	if c, ok := t.cache[key]; ok {
		t.recordDependent(q, key)
		t.mu.Unlock()
		return c.value
	}
	t.mu.Unlock()

	childQuery := q.withTrigger(t.name, key)
	v := t.produce(childQuery, key)

	t.mu.Lock()
	gen := ""
	if t.genToken != nil {
		gen = t.genToken()
	}
	t.cache[key] = cached[V]{value: v, generation: gen}
	t.recordDependent(q, key)
	if t.log != nil && config.IsDebugMode {
		t.log.Debugf("environment: %s[%s] produced (generation=%s)", t.name, key, gen)
	}
	t.mu.Unlock()
	return v
}

// recordDependent must be called with t.mu held.
func (t *Table[V]) recordDependent(q *Query, key string) {
	if q == nil || !q.Track {
		return
	}
	t.dependents[key] = append(t.dependents[key], q.trigger)
}

// Peek returns the cached value for key without producing it, reporting
// whether it was present.
func (t *Table[V]) Peek(key string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.cache[key]
	return c.value, ok
}

// Generation returns the generation token stamped on key's cached value
// (spec §8 property 9), or "" if key isn't cached or the table wasn't
// built WithGenerationTokens.
func (t *Table[V]) Generation(key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache[key].generation
}

// Keys returns every currently-cached key, letting a caller enumerate a
// table's contents for persistence (internal/store) without the table
// exposing its internal map.
func (t *Table[V]) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.cache))
	for k := range t.cache {
		out = append(out, k)
	}
	return out
}

// Seed installs a precomputed (value, generation) pair directly into the
// cache without calling produce — how a restored store.Entry repopulates
// a table on process restart (spec §6).
func (t *Table[V]) Seed(key string, value V, generation string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache[key] = cached[V]{value: value, generation: generation}
}

// Invalidate drops key's cached value and returns every downstream
// trigger recorded against it (spec §4.3.1: "invalidates its own cached
// keys by walking the dependency map"). The caller (the Stack
// orchestrating the whole update) decides whether to recompute those
// triggers now (eager) or let them recompute lazily on next read.
func (t *Table[V]) Invalidate(key string) []Trigger {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cache, key)
	deps := t.dependents[key]
	delete(t.dependents, key)
	if t.log != nil && config.IsDebugMode {
		t.log.Debugf("environment: %s[%s] invalidated, %d downstream trigger(s)", t.name, key, len(deps))
	}
	out := make([]Trigger, len(deps))
	copy(out, deps)
	return out
}

// InvalidateAll clears every cached key, returning every recorded
// downstream trigger across the whole table — used when an upstream
// change is broad enough that per-key invalidation isn't worth tracking
// precisely (e.g. the module tracker reporting a directory rename).
func (t *Table[V]) InvalidateAll() []Trigger {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Trigger
	for _, deps := range t.dependents {
		out = append(out, deps...)
	}
	t.cache = make(map[string]cached[V])
	t.dependents = make(map[string][]Trigger)
	return out
}
