// Package preflight refuses to touch hosts the installer must not manage.
package preflight

import (
	"os"
	"strings"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/arthur-debert/nix-installer/pkg/logging"
)

// OSReleasePath identifies the running distribution.
const OSReleasePath = "/etc/os-release"

// CheckRoot fails unless euid is the superuser.
func CheckRoot(euid int) error {
	if euid != 0 {
		return errors.New(errors.ErrPrecondition, "must be run as root").
			WithDetail("euid", euid)
	}
	return nil
}

// CheckHost fails on NixOS, whose /nix is managed by the system itself.
// A host without os-release passes.
func CheckHost(fs gateway.Filesystem) error {
	data, err := fs.ReadFile(OSReleasePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger := logging.GetLogger("preflight")
			logger.Debug().Str("path", OSReleasePath).Msg("No os-release, assuming a foreign distribution")
			return nil
		}
		return errors.Filesystem(err, "read", OSReleasePath)
	}

	if strings.Contains(strings.ToLower(string(data)), "nixos") {
		return errors.New(errors.ErrPrecondition, "this looks like NixOS, aborting to avoid breaking the system").
			WithDetail("path", OSReleasePath)
	}
	return nil
}

// Check runs every guard in order.
func Check(euid int, fs gateway.Filesystem) error {
	if err := CheckRoot(euid); err != nil {
		return err
	}
	return CheckHost(fs)
}
