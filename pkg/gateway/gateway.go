package gateway

import (
	"fmt"
	"os"
)

// NodeKind is the type of filesystem node found at a path.
type NodeKind int

const (
	// NodeAbsent means nothing exists at the path.
	NodeAbsent NodeKind = iota
	// NodeFile is a regular file.
	NodeFile
	// NodeDirectory is a directory.
	NodeDirectory
	// NodeOther covers symlinks, sockets, devices and pipes.
	NodeOther
)

func (k NodeKind) String() string {
	switch k {
	case NodeAbsent:
		return "absent"
	case NodeFile:
		return "file"
	case NodeDirectory:
		return "directory"
	case NodeOther:
		return "other"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// ModeMask selects the permission bits the installer manages, including
// the sticky, setuid and setgid bits.
const ModeMask = os.ModePerm | os.ModeSticky | os.ModeSetuid | os.ModeSetgid

// NodeInfo describes what Stat found at a path. Mode, UID and GID are
// zero when Kind is NodeAbsent.
type NodeInfo struct {
	Kind NodeKind
	Mode os.FileMode
	UID  int
	GID  int
}

// CommandResult is the outcome of an external command that ran to completion.
type CommandResult struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with status zero.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Filesystem is the set of node queries and mutations the steps use.
// Implementations return raw OS errors; callers attach context.
type Filesystem interface {
	// Stat inspects path without following a final symlink. A missing
	// path is not an error: it yields Kind NodeAbsent.
	Stat(path string) (NodeInfo, error)
	MkdirAll(path string) error
	RemoveFile(path string) error
	RemoveAll(path string) error
	Chown(path string, uid, gid int) error
	Chmod(path string, mode os.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, mode os.FileMode) error
}

// Commands runs external executables synchronously.
type Commands interface {
	// Run blocks until the command exits. A non-zero exit status is
	// reported through CommandResult, not as an error; the error is
	// reserved for commands that could not be started at all.
	Run(name string, args ...string) (CommandResult, error)
}

// UserDatabase resolves numeric ids against the host account database.
type UserDatabase interface {
	// ScanUser returns the login name owning uid, if any.
	ScanUser(uid int) (string, bool, error)
	// LookupGroup returns the name of the group with gid, if any.
	LookupGroup(gid int) (string, bool, error)
}

// Accounts is what the user pool needs: lookups plus the commands
// that change the account database.
type Accounts interface {
	Commands
	UserDatabase
}

// System is the full gateway surface consumed by the installer.
type System interface {
	Filesystem
	Accounts
}
