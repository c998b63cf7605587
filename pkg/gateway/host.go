package gateway

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// dirPerm is used for directories created by MkdirAll; callers set the
// final mode with Chmod.
const dirPerm os.FileMode = 0755

type ownership struct {
	uid int
	gid int
}

// Host implements System against the running machine.
type Host struct {
	fs     afero.Fs
	logger zerolog.Logger

	// owners remembers Chown calls for filesystems whose FileInfo carries
	// no syscall.Stat_t (afero's MemMapFs).
	owners map[string]ownership
}

// NewHost returns a gateway to the real operating system.
func NewHost() *Host {
	return NewHostWithFs(afero.NewOsFs())
}

// NewHostWithFs returns a Host whose filesystem operations go to fs.
// Commands and account lookups still reach the real machine.
func NewHostWithFs(fs afero.Fs) *Host {
	return &Host{
		fs:     fs,
		logger: logging.GetLogger("gateway.host"),
		owners: make(map[string]ownership),
	}
}

// Fs exposes the underlying afero filesystem.
func (h *Host) Fs() afero.Fs {
	return h.fs
}

func (h *Host) Stat(path string) (NodeInfo, error) {
	var info os.FileInfo
	var err error
	if lstater, ok := h.fs.(afero.Lstater); ok {
		info, _, err = lstater.LstatIfPossible(path)
	} else {
		info, err = h.fs.Stat(path)
	}
	if err != nil {
		// ENOTDIR means some parent is not a directory, so nothing can
		// exist at path either.
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return NodeInfo{Kind: NodeAbsent}, nil
		}
		return NodeInfo{}, err
	}

	node := NodeInfo{Mode: info.Mode() & ModeMask}
	switch {
	case info.Mode().IsRegular():
		node.Kind = NodeFile
	case info.IsDir():
		node.Kind = NodeDirectory
	default:
		node.Kind = NodeOther
	}

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		node.UID = int(stat.Uid)
		node.GID = int(stat.Gid)
	} else if owner, ok := h.owners[filepath.Clean(path)]; ok {
		node.UID = owner.uid
		node.GID = owner.gid
	}
	return node, nil
}

func (h *Host) MkdirAll(path string) error {
	h.logger.Debug().Str("path", path).Msg("mkdir -p")
	return h.fs.MkdirAll(path, dirPerm)
}

func (h *Host) RemoveFile(path string) error {
	h.logger.Debug().Str("path", path).Msg("rm")
	if err := h.fs.Remove(path); err != nil {
		return err
	}
	h.forget(path)
	return nil
}

func (h *Host) RemoveAll(path string) error {
	h.logger.Debug().Str("path", path).Msg("rm -r")
	if err := h.fs.RemoveAll(path); err != nil {
		return err
	}
	h.forget(path)
	return nil
}

func (h *Host) Chown(path string, uid, gid int) error {
	h.logger.Debug().Str("path", path).Int("uid", uid).Int("gid", gid).Msg("chown")
	if err := h.fs.Chown(path, uid, gid); err != nil {
		return err
	}
	h.owners[filepath.Clean(path)] = ownership{uid: uid, gid: gid}
	return nil
}

func (h *Host) Chmod(path string, mode os.FileMode) error {
	h.logger.Debug().Str("path", path).Str("mode", mode.String()).Msg("chmod")
	return h.fs.Chmod(path, mode)
}

func (h *Host) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(h.fs, path)
}

func (h *Host) WriteFile(path string, data []byte, mode os.FileMode) error {
	h.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("write")
	return afero.WriteFile(h.fs, path, data, mode)
}

// forget drops remembered ownership for path and everything below it.
func (h *Host) forget(path string) {
	clean := filepath.Clean(path)
	prefix := clean + string(filepath.Separator)
	for p := range h.owners {
		if p == clean || strings.HasPrefix(p, prefix) {
			delete(h.owners, p)
		}
	}
}

func (h *Host) Run(name string, args ...string) (CommandResult, error) {
	logging.LogCommand(h.logger, name, args)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Command: name,
		Args:    args,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

func (h *Host) ScanUser(uid int) (string, bool, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		var unknown user.UnknownUserIdError
		if errors.As(err, &unknown) {
			return "", false, nil
		}
		return "", false, err
	}
	return u.Username, true, nil
}

func (h *Host) LookupGroup(gid int) (string, bool, error) {
	g, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		var unknown user.UnknownGroupIdError
		if errors.As(err, &unknown) {
			return "", false, nil
		}
		return "", false, err
	}
	return g.Name, true, nil
}

var _ System = (*Host)(nil)
