// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// ErrInvalidConfig is returned when the merged configuration fails validation or a runtime
// override names an unknown key.
var ErrInvalidConfig = errors.New("invalid configuration")

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	sources       []ConfigSource
	mu            sync.RWMutex
}

// NewManager creates a Manager with an empty koanf instance.
func NewManager() *Manager {
	return &Manager{
		koanfInstance: koanf.New("."),
		currentConfig: DefaultConfig(),
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Bench: BenchConfig{
			Listeners:      1000,
			EventsPerFrame: 100,
			OnceRatio:      0.1,
			MinPriority:    -10,
			MaxPriority:    10,
			Seed:           1,
		},
		Loop: LoopConfig{
			Frames:   60,
			Interval: 0,
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig for koanf's confmap provider.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":    def.Log.Level,
		"log.format":   def.Log.Format,
		"log.no_color": def.Log.NoColor,

		"bench.listeners":        def.Bench.Listeners,
		"bench.events_per_frame": def.Bench.EventsPerFrame,
		"bench.once_ratio":       def.Bench.OnceRatio,
		"bench.min_priority":     def.Bench.MinPriority,
		"bench.max_priority":     def.Bench.MaxPriority,
		"bench.seed":             def.Bench.Seed,

		"loop.frames":   def.Loop.Frames,
		"loop.interval": def.Loop.Interval,
	}
}

// Load merges defaults, the optional YAML file, TINYEVENTS_* environment variables and flags.
func (m *Manager) Load(flags *pflag.FlagSet, configFilePath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadFrom(DefaultSources(configFilePath, flags, debug)...)
}

// LoadFrom loads the given sources in priority order and validates the result.
func (m *Manager) LoadFrom(sources ...ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := append([]ConfigSource(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	k := koanf.New(".")
	for _, src := range sorted {
		if err := src.Load(k); err != nil {
			return fmt.Errorf("load %s: %w", src.Name(), err)
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return err
	}

	m.koanfInstance = k
	m.currentConfig = cfg
	m.sources = sorted
	return nil
}

// Reload re-reads the sources of the last successful load. Runtime overrides made with Set
// are discarded. On error the previous configuration stays in effect.
func (m *Manager) Reload() (Config, error) {
	m.mu.RLock()
	sources := m.sources
	m.mu.RUnlock()

	if err := m.LoadFrom(sources...); err != nil {
		return m.Get(), err
	}
	return m.Get(), nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Koanf exposes the merged key space, mainly for diagnostics.
func (m *Manager) Koanf() *koanf.Koanf {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance
}

// Set overrides one key at runtime. The value is coerced to the key's type; the change is
// discarded if the resulting configuration does not validate.
func (m *Manager) Set(key string, value interface{}) error {
	coerced, err := coerce(key, value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.koanfInstance.Copy()
	if err := k.Set(key, coerced); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return err
	}

	m.koanfInstance = k
	m.currentConfig = cfg
	return nil
}

func unmarshal(k *koanf.Koanf) (Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func coerce(key string, value interface{}) (interface{}, error) {
	var (
		out interface{}
		err error
	)

	switch key {
	case "log.level", "log.format":
		out, err = cast.ToStringE(value)
	case "log.no_color":
		out, err = cast.ToBoolE(value)
	case "bench.listeners", "bench.events_per_frame":
		out, err = cast.ToIntE(value)
	case "bench.once_ratio":
		out, err = cast.ToFloat64E(value)
	case "bench.min_priority", "bench.max_priority":
		out, err = cast.ToInt32E(value)
	case "bench.seed", "loop.frames":
		out, err = cast.ToUint64E(value)
	case "loop.interval":
		var d time.Duration
		d, err = cast.ToDurationE(value)
		out = d
	default:
		return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return out, nil
}

// BindFlags defines command-line flags corresponding to configuration settings.
// Flag names are mapped onto config keys by FlagSource.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-level", defaults.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "Log format (text, json)")
	flags.Bool("no-color", defaults.Log.NoColor, "Disable colored logs")

	flags.Int("listeners", defaults.Bench.Listeners, "Listeners to subscribe")
	flags.Int("events", defaults.Bench.EventsPerFrame, "Events dispatched and queued per frame")
	flags.Float64("once-ratio", defaults.Bench.OnceRatio, "Share of one-shot listeners (0..1)")
	flags.Uint64("seed", defaults.Bench.Seed, "Workload generator seed")
	flags.Uint64("frames", defaults.Loop.Frames, "Frames to run")
	flags.Duration("interval", defaults.Loop.Interval, "Delay between frames")
}
