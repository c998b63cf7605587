package config

import (
	"path/filepath"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// Settings is the installer configuration.
type Settings struct {
	Users   Users   `koanf:"users" toml:"users"`
	NixConf NixConf `koanf:"nixconf" toml:"nixconf"`
}

// Users configures the build user pool and its group.
type Users struct {
	Count      int    `koanf:"count" toml:"count"`
	BaseUID    int    `koanf:"base_uid" toml:"base_uid"`
	ScanWindow int    `koanf:"scan_window" toml:"scan_window"`
	Prefix     string `koanf:"prefix" toml:"prefix"`
	Group      string `koanf:"group" toml:"group"`
	GID        int    `koanf:"gid" toml:"gid"`
	Shell      string `koanf:"shell" toml:"shell"`
	HomeDir    string `koanf:"home_dir" toml:"home_dir"`
}

// NixConf locates the managed nix.conf.
type NixConf struct {
	Path string `koanf:"path" toml:"path"`
}

// Validate checks that the settings describe a pool the installer can
// manage.
func (s *Settings) Validate() error {
	u := s.Users
	switch {
	case u.Count < 0:
		return invalid("users.count", u.Count, "must not be negative")
	case u.BaseUID <= 0:
		return invalid("users.base_uid", u.BaseUID, "must be positive")
	case u.ScanWindow <= 0:
		return invalid("users.scan_window", u.ScanWindow, "must be positive")
	case u.Count >= u.ScanWindow:
		return invalid("users.count", u.Count, "must be below users.scan_window")
	case u.Prefix == "":
		return invalid("users.prefix", u.Prefix, "must not be empty")
	case u.GID <= 0:
		return invalid("users.gid", u.GID, "must be positive")
	case u.HomeDir != "" && !filepath.IsAbs(u.HomeDir):
		return invalid("users.home_dir", u.HomeDir, "must be an absolute path")
	case !filepath.IsAbs(s.NixConf.Path):
		return invalid("nixconf.path", s.NixConf.Path, "must be an absolute path")
	}
	return nil
}

func invalid(key string, value interface{}, reason string) error {
	return errors.Newf(errors.ErrConfigValid, "%s %s (got %v)", key, reason, value).
		WithDetail("key", key).
		WithDetail("value", value)
}

// TOML renders the settings in the same shape as the settings file.
func (s *Settings) TOML() ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode settings")
	}
	return data, nil
}
