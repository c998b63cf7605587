// Package config loads the installer's own settings.
//
// Settings are layered with koanf: the embedded defaults.toml first, then
// an optional TOML file, then NIX_INSTALLER_* environment variables. The
// result is decoded into Settings and validated before use.
//
// These are settings for the installer itself. The nix.conf the installer
// manages is handled by package nixconf.
package config
