// pkg/config/source.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by EnvSource.
const EnvPrefix = "TINYEVENTS_"

// ConfigSource represents a configuration source that can load values into koanf.
// Sources are loaded in priority order (lowest first), with higher priority sources
// overriding lower priority values.
//
// Built-in sources and their priorities:
//   - DefaultSource (10): Hardcoded default values
//   - FileSource (20): YAML config file
//   - EnvSource (30): Environment variables (TINYEVENTS_*)
//   - FlagSource (40): Command-line flags
type ConfigSource interface {
	Name() string
	Priority() int
	Load(k *koanf.Koanf) error
}

// DefaultSource provides hardcoded default configuration values.
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads configuration from a YAML file. An empty or missing path is skipped.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}

	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error checking config file %s: %w", s.Path, err)
	}

	if err := k.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvSource loads configuration from environment variables. The first underscore after the
// prefix separates the section from the field:
//
//	TINYEVENTS_LOG_LEVEL -> log.level
//	TINYEVENTS_BENCH_EVENTS_PER_FRAME -> bench.events_per_frame
type EnvSource struct {
	Prefix string
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}

	if err := k.Load(env.Provider(prefix, ".", func(key string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(key, prefix)), "_", ".", 1)
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// flagKeys maps CLI flag names onto config keys. Flags not listed are not configuration.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"no-color":   "log.no_color",
	"listeners":  "bench.listeners",
	"events":     "bench.events_per_frame",
	"once-ratio": "bench.once_ratio",
	"seed":       "bench.seed",
	"frames":     "loop.frames",
	"interval":   "loop.interval",
}

// FlagSource loads configuration from command-line flags. Only flags changed on the command
// line override lower sources.
type FlagSource struct {
	Flags *pflag.FlagSet
	Debug bool
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags != nil {
		provider := posflag.ProviderWithFlag(s.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(s.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}
	}

	if s.Debug {
		_ = k.Set("log.level", "debug")
	}
	return nil
}

// DefaultSources returns the standard configuration sources.
// Order: defaults -> file -> env -> flags
func DefaultSources(configPath string, flags *pflag.FlagSet, debug bool) []ConfigSource {
	return []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&EnvSource{Prefix: EnvPrefix},
		&FlagSource{Flags: flags, Debug: debug},
	}
}
