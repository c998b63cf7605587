package testutil

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/spf13/afero"
)

// FakeGateway is an in-memory gateway.System for tests.
//
// Filesystem calls go through the real gateway.Host on top of an afero
// MemMapFs, so ownership and mode bookkeeping is the production code.
// The account database is a pair of maps, and Run understands just
// enough of useradd, userdel, groupadd and groupdel to keep them in sync.
// Every Run call is recorded.
type FakeGateway struct {
	*gateway.Host

	Users  map[int]string
	Groups map[int]string

	// Invocations records every command passed to Run, in order.
	Invocations []gateway.CommandResult

	// CommandResults forces the result of a command by name instead of
	// simulating it.
	CommandResults map[string]gateway.CommandResult

	// fsErrors injects failures keyed by "op path".
	fsErrors map[string]error
}

// NewFakeGateway creates an empty fake host.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Host:           gateway.NewHostWithFs(afero.NewMemMapFs()),
		Users:          make(map[int]string),
		Groups:         make(map[int]string),
		CommandResults: make(map[string]gateway.CommandResult),
		fsErrors:       make(map[string]error),
	}
}

// FailOn makes the filesystem operation op ("mkdir", "rm", "rm -r",
// "chown", "chmod", "write") fail on path with err.
func (f *FakeGateway) FailOn(op, path string, err error) {
	f.fsErrors[op+" "+path] = err
}

func (f *FakeGateway) injected(op, path string) error {
	return f.fsErrors[op+" "+path]
}

func (f *FakeGateway) MkdirAll(path string) error {
	if err := f.injected("mkdir", path); err != nil {
		return err
	}
	return f.Host.MkdirAll(path)
}

func (f *FakeGateway) RemoveFile(path string) error {
	if err := f.injected("rm", path); err != nil {
		return err
	}
	return f.Host.RemoveFile(path)
}

func (f *FakeGateway) RemoveAll(path string) error {
	if err := f.injected("rm -r", path); err != nil {
		return err
	}
	return f.Host.RemoveAll(path)
}

func (f *FakeGateway) Chown(path string, uid, gid int) error {
	if err := f.injected("chown", path); err != nil {
		return err
	}
	return f.Host.Chown(path, uid, gid)
}

func (f *FakeGateway) Chmod(path string, mode os.FileMode) error {
	if err := f.injected("chmod", path); err != nil {
		return err
	}
	return f.Host.Chmod(path, mode)
}

func (f *FakeGateway) WriteFile(path string, data []byte, mode os.FileMode) error {
	if err := f.injected("write", path); err != nil {
		return err
	}
	return f.Host.WriteFile(path, data, mode)
}

// AddUsers seeds the account database with uid -> name pairs.
func (f *FakeGateway) AddUsers(users map[int]string) {
	for uid, name := range users {
		f.Users[uid] = name
	}
}

// UserIDs returns the seeded and created uids in ascending order.
func (f *FakeGateway) UserIDs() []int {
	ids := make([]int, 0, len(f.Users))
	for uid := range f.Users {
		ids = append(ids, uid)
	}
	sort.Ints(ids)
	return ids
}

// CommandsNamed returns the recorded invocations of name.
func (f *FakeGateway) CommandsNamed(name string) []gateway.CommandResult {
	var out []gateway.CommandResult
	for _, inv := range f.Invocations {
		if inv.Command == name {
			out = append(out, inv)
		}
	}
	return out
}

func (f *FakeGateway) ScanUser(uid int) (string, bool, error) {
	name, ok := f.Users[uid]
	return name, ok, nil
}

func (f *FakeGateway) LookupGroup(gid int) (string, bool, error) {
	name, ok := f.Groups[gid]
	return name, ok, nil
}

func (f *FakeGateway) Run(name string, args ...string) (gateway.CommandResult, error) {
	result := gateway.CommandResult{Command: name, Args: args}
	if forced, ok := f.CommandResults[name]; ok {
		forced.Command = name
		forced.Args = args
		f.Invocations = append(f.Invocations, forced)
		return forced, nil
	}

	switch name {
	case "useradd":
		uid, _ := strconv.Atoi(flagValue(args, "--uid"))
		login := args[len(args)-1]
		if _, taken := f.Users[uid]; taken {
			result.ExitCode = 4
			result.Stderr = fmt.Sprintf("useradd: UID %d is not unique\n", uid)
		} else {
			f.Users[uid] = login
		}
	case "userdel":
		login := args[len(args)-1]
		if uid, ok := f.uidOf(login); ok {
			delete(f.Users, uid)
		} else {
			result.ExitCode = 6
			result.Stderr = fmt.Sprintf("userdel: user '%s' does not exist\n", login)
		}
	case "groupadd":
		gid, _ := strconv.Atoi(flagValue(args, "--gid"))
		f.Groups[gid] = args[len(args)-1]
	case "groupdel":
		group := args[len(args)-1]
		for gid, n := range f.Groups {
			if n == group {
				delete(f.Groups, gid)
			}
		}
	}

	f.Invocations = append(f.Invocations, result)
	return result, nil
}

func (f *FakeGateway) uidOf(login string) (int, bool) {
	for uid, name := range f.Users {
		if name == login {
			return uid, true
		}
	}
	return 0, false
}

func flagValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

var _ gateway.System = (*FakeGateway)(nil)
