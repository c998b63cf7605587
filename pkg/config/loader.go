package config

import (
	"strings"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NIX_INSTALLER_"

// Load builds the effective settings. settingsFile is optional; when set
// it must exist.
func Load(settingsFile string) (*Settings, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Settings file
	if settingsFile != "" {
		logger.Debug().Str("path", settingsFile).Msg("Loading settings file")
		if err := k.Load(file.Provider(settingsFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load settings from %s", settingsFile).
				WithDetail("path", settingsFile)
		}
	}

	// 3. Env vars: NIX_INSTALLER_USERS_BASE_UID -> users.base_uid
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Unmarshal
	s, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Int("users", s.Users.Count).
		Int("base_uid", s.Users.BaseUID).
		Str("nixconf", s.NixConf.Path).
		Msg("Settings loaded")
	return &s, nil
}

// Default returns the embedded defaults alone.
func Default() (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}
	s, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func unmarshal(k *koanf.Koanf) (Settings, error) {
	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return s, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal settings")
	}
	return s, nil
}
