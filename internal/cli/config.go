package cli

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix is the prefix for configuration environment variables
// (e.g. IMPACTGRAPH_ADDR=:9090).
const envPrefix = "IMPACTGRAPH_"

// defaultConfigFile is loaded when --config is not given and the file exists.
const defaultConfigFile = "impactgraph.toml"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	Addr     string `koanf:"addr"`     // listen address
	Data     string `koanf:"data"`     // store locator (demo, CSV dir, SQLite file, mongodb://)
	Theme    string `koanf:"theme"`    // theme TOML path, empty for the built-in theme
	Cache    string `koanf:"cache"`    // artifact cache backend: file, redis, none
	CacheDir string `koanf:"cachedir"` // file cache directory, empty for the XDG default
	Redis    string `koanf:"redis"`    // redis address for the redis backend
	Watch    bool   `koanf:"watch"`    // watch CSV table files for changes
}

// loadServeConfig loads configuration from defaults, an optional TOML
// file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults.
func loadServeConfig(f *pflag.FlagSet, configFile string) (*ServeConfig, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]any{
		"addr":     ":8080",
		"data":     demoLocator,
		"theme":    "",
		"cache":    "file",
		"cachedir": "",
		"redis":    "localhost:6379",
		"watch":    false,
	}
	if err := k.Load(mapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Config file. An explicit --config must exist; the default file
	// is optional.
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", configFile, err)
		}
	} else {
		_ = k.Load(file.Provider(defaultConfigFile), toml.Parser())
	}

	// 3. Environment variables (IMPACTGRAPH_ADDR, IMPACTGRAPH_DATA, ...)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg ServeConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// confMap adapts a plain map to koanf's Provider interface.
type confMap struct {
	m map[string]any
}

func mapProvider(m map[string]any) *confMap {
	return &confMap{m: m}
}

func (p *confMap) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *confMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
