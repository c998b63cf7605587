// Package layout declares what a Nix install looks like on disk: the
// managed directories with their fixed attributes, and the build user
// pool built from installer settings.
package layout

import (
	"os"

	"github.com/arthur-debert/nix-installer/pkg/config"
	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/arthur-debert/nix-installer/pkg/steps"
)

// DirectorySpec is one managed directory.
type DirectorySpec struct {
	Path  string
	Mode  os.FileMode
	Owner int
	Group int
}

// StoreMode is the mode of /nix/store: group writable for the build
// users, sticky so they cannot remove each other's outputs.
const StoreMode = 0775 | os.ModeSticky

// Directories returns the managed directories, parents before children.
// storeGID owns /nix/store.
func Directories(storeGID int) []DirectorySpec {
	rootOwned := func(path string) DirectorySpec {
		return DirectorySpec{Path: path, Mode: 0755}
	}
	return []DirectorySpec{
		rootOwned("/nix"),
		rootOwned("/nix/var"),
		rootOwned("/nix/var/log/nix/drvs"),
		rootOwned("/nix/var/nix/db"),
		rootOwned("/nix/var/nix/gcroots/per-user"),
		rootOwned("/nix/var/nix/profiles/per-user"),
		rootOwned("/nix/var/nix/temproots"),
		rootOwned("/nix/var/nix/userpool"),
		{Path: "/nix/store", Mode: StoreMode, Owner: 0, Group: storeGID},
		rootOwned("/etc/nix"),
	}
}

// DirectorySteps turns the directory table into steps, in table order.
func DirectorySteps(fs gateway.Filesystem, storeGID int) []steps.Step {
	specs := Directories(storeGID)
	result := make([]steps.Step, 0, len(specs))
	for _, d := range specs {
		result = append(result, steps.NewDirectory(fs, d.Path, d.Mode, d.Owner, d.Group))
	}
	return result
}

// UserPool builds the build user pool described by settings, sized to
// count users.
func UserPool(accounts gateway.Accounts, users config.Users, count int) *steps.UserPool {
	pool := steps.NewUserPool(accounts, count, users.GID, users.Prefix)
	pool.GroupName = users.Group
	pool.BaseUID = users.BaseUID
	pool.ScanWindow = users.ScanWindow
	pool.Shell = users.Shell
	pool.HomeDir = users.HomeDir
	return pool
}
