// Package assets holds files shipped inside the installer binary.
package assets

import (
	_ "embed"
)

//go:embed embedded/nix.conf
var defaultNixConf []byte

// DefaultNixConf returns the nix.conf written when the host has none.
// The caller owns the returned slice.
func DefaultNixConf() []byte {
	out := make([]byte, len(defaultNixConf))
	copy(out, defaultNixConf)
	return out
}
