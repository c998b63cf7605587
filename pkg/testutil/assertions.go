package testutil

import (
	"os"
	"testing"

	"github.com/arthur-debert/nix-installer/pkg/gateway"
)

// AssertDirectory checks that path is a directory with exactly mode,
// uid and gid.
func AssertDirectory(t *testing.T, fs gateway.Filesystem, path string, mode os.FileMode, uid, gid int) {
	t.Helper()

	info, err := fs.Stat(path)
	if err != nil {
		t.Errorf("stat %s: %v", path, err)
		return
	}
	if info.Kind != gateway.NodeDirectory {
		t.Errorf("%s: expected a directory, found %s", path, info.Kind)
		return
	}
	if info.Mode != mode {
		t.Errorf("%s: expected mode %v, got %v", path, mode, info.Mode)
	}
	if info.UID != uid || info.GID != gid {
		t.Errorf("%s: expected owner %d:%d, got %d:%d", path, uid, gid, info.UID, info.GID)
	}
}

// AssertAbsent checks that nothing exists at path.
func AssertAbsent(t *testing.T, fs gateway.Filesystem, path string) {
	t.Helper()

	info, err := fs.Stat(path)
	if err != nil {
		t.Errorf("stat %s: %v", path, err)
		return
	}
	if info.Kind != gateway.NodeAbsent {
		t.Errorf("%s: expected nothing, found %s", path, info.Kind)
	}
}
