// Package config holds process-wide toggles and the on-disk configuration
// for the type-inference core. Nothing in here is read mid-query; flags are
// flipped once at process start (see the "Global singletons" note in the
// design notes) and the Config struct is loaded once by the CLI entry point.
package config

// Version is the current typecore version.
var Version = "0.1.0"

// IsTestMode is a process-wide test flag. No package in this module reads
// it: fresh type-variable names and namespace counters are not normalized
// when it is set.
var IsTestMode = false

// IsDebugMode enables verbose dependency-tracking and cache-invalidation
// logging from the environment stack (internal/environment).
var IsDebugMode = false

// SourceFileExt is the canonical extension for Glyph source files.
const SourceFileExt = ".glyph"

// Config is the on-disk, user-editable configuration for a typecore run.
// It is loaded from a "typecore.yaml" file via gopkg.in/yaml.v3; any field
// left unset falls back to the Default() values below.
type Config struct {
	// LazyIncremental, when true (the default), means a layer recomputes
	// an invalidated key on next read rather than eagerly on update
	// (§4.3.1 of the spec).
	LazyIncremental bool `yaml:"lazy_incremental"`

	// WidenThreshold is the widen() iteration count (§4.2.7) past which
	// the result collapses to Top. Load defaults it, but no code passes it
	// on: order.Engine.Widen takes its threshold as an argument.
	WidenThreshold int `yaml:"widen_threshold"`

	// MaxCacheEntries is loaded from the file but not enforced: the
	// environment tables never evict memoized (key, value) pairs, so every
	// layer is unbounded whatever this is set to.
	MaxCacheEntries int `yaml:"max_cache_entries"`

	// LogLevel controls internal/logging's verbosity: "debug", "info",
	// "warn", or "error".
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration typecore runs with when no
// typecore.yaml is present.
func Default() Config {
	return Config{
		LazyIncremental: true,
		WidenThreshold:  10,
		MaxCacheEntries: 0,
		LogLevel:        "warn",
	}
}
