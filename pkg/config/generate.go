package config

import (
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/recookio/recook/pkg/errors"
)

// GenerateDefault renders the resolved default configuration as TOML,
// suitable for seeding a user config file.
func GenerateDefault() (string, error) {
	cfg, err := Load("")
	if err != nil {
		return "", err
	}
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(out), nil
}
