// Package config loads recook's configuration by layering embedded defaults,
// an optional user config file (TOML or YAML) and environment overrides.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/recookio/recook/pkg/errors"
)

//go:embed default.toml
var defaultConfig []byte

// Environment variable overrides
const (
	EnvStoreDir = "RECOOK_STORE_DIR"
)

// Config is the resolved configuration
type Config struct {
	Store struct {
		Dir string `koanf:"dir" toml:"dir"`
	} `koanf:"store" toml:"store"`
	Digest struct {
		Algorithms []string `koanf:"algorithms" toml:"algorithms"`
	} `koanf:"digest" toml:"digest"`
	Backup struct {
		Suffix string `koanf:"suffix" toml:"suffix"`
	} `koanf:"backup" toml:"backup"`
}

// Load resolves the configuration. explicitPath, when non-empty, names the
// config file to load; otherwise recook.toml / recook.yaml are looked up in
// the XDG config directory.
func Load(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file, if any
	path := explicitPath
	if path == "" {
		for _, name := range []string{"recook.toml", "recook.yaml"} {
			candidate := filepath.Join(xdg.ConfigHome, "recook", name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	}

	// 3. Environment overrides
	if dir := os.Getenv(EnvStoreDir); dir != "" {
		_ = k.Set("store.dir", dir)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid configuration")
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = filepath.Join(xdg.CacheHome, "recook", "archives")
	}
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return yaml.Parser()
	}
	return toml.Parser()
}

// rawBytesProvider feeds embedded bytes to koanf
type rawBytesProvider struct {
	bytes []byte
}

func (r *rawBytesProvider) ReadBytes() ([]byte, error) {
	return r.bytes, nil
}

func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "rawBytesProvider does not support Read")
}
