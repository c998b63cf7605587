package steps

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseUID is the id just below the first build user.
	DefaultBaseUID = 30000

	// DefaultScanWindow is how many ids above the base uid the pool claims.
	// Users with the pool prefix beyond the window are invisible to the
	// pool, which caps a pool at DefaultScanWindow-1 users.
	DefaultScanWindow = 2000
)

// User is a live account found while scanning the pool's id window.
type User struct {
	UID  int
	Name string
}

// Delta is the difference between the live pool and its target.
type Delta struct {
	Removed     []User
	Added       []User
	CreateGroup bool
	RemoveGroup bool
}

// IsEmpty reports whether the live pool already matches the target.
func (d Delta) IsEmpty() bool {
	return len(d.Removed) == 0 && len(d.Added) == 0 && !d.CreateGroup && !d.RemoveGroup
}

// UserPool reconciles the numbered build users Prefix1..PrefixCount with
// uids BaseUID+1..BaseUID+Count.
//
// The pool owns every user whose uid lies in [BaseUID, BaseUID+ScanWindow)
// and whose name starts with Prefix: any such user outside the target is
// deleted. When GroupName is set the pool also creates the build group
// with GID before adding users, and Delete removes it again.
type UserPool struct {
	Count      int
	GID        int
	Prefix     string
	GroupName  string
	BaseUID    int
	ScanWindow int
	Shell      string
	HomeDir    string

	accounts gateway.Accounts
	logger   zerolog.Logger
}

// NewUserPool creates a pool of count users with the default id window.
func NewUserPool(accounts gateway.Accounts, count, gid int, prefix string) *UserPool {
	return &UserPool{
		Count:      count,
		GID:        gid,
		Prefix:     prefix,
		BaseUID:    DefaultBaseUID,
		ScanWindow: DefaultScanWindow,
		accounts:   accounts,
		logger:     logging.GetLogger("steps.userpool").With().Str("prefix", prefix).Logger(),
	}
}

func (p *UserPool) Name() string {
	return fmt.Sprintf("user pool %s (%d users)", p.Prefix, p.Count)
}

// Delta computes the pool's delta against the live system.
func (p *UserPool) Delta() (Delta, error) {
	return p.delta(p.Count)
}

func (p *UserPool) delta(count int) (Delta, error) {
	// BaseUID+count must stay inside the scanned window or the pool can
	// never see the users it adds.
	if count < 0 || count >= p.ScanWindow {
		return Delta{}, errors.Newf(errors.ErrInvalidInput,
			"user pool of %d users does not fit a scan window of %d ids", count, p.ScanWindow).
			WithDetail("count", count).
			WithDetail("scan_window", p.ScanWindow)
	}

	target := make(map[User]struct{}, count)
	for i := 1; i <= count; i++ {
		target[User{UID: p.BaseUID + i, Name: p.Prefix + strconv.Itoa(i)}] = struct{}{}
	}

	live := make(map[User]struct{})
	for uid := p.BaseUID; uid < p.BaseUID+p.ScanWindow; uid++ {
		name, found, err := p.accounts.ScanUser(uid)
		if err != nil {
			return Delta{}, errors.Wrapf(err, errors.ErrInternal, "failed to look up uid %d", uid).
				WithDetail("uid", uid)
		}
		if found && strings.HasPrefix(name, p.Prefix) {
			live[User{UID: uid, Name: name}] = struct{}{}
		}
	}

	var delta Delta
	for u := range live {
		if _, ok := target[u]; !ok {
			delta.Removed = append(delta.Removed, u)
		}
	}
	for u := range target {
		if _, ok := live[u]; !ok {
			delta.Added = append(delta.Added, u)
		}
	}
	sortUsers(delta.Removed)
	sortUsers(delta.Added)

	if p.GroupName != "" {
		name, found, err := p.accounts.LookupGroup(p.GID)
		if err != nil {
			return Delta{}, errors.Wrapf(err, errors.ErrInternal, "failed to look up gid %d", p.GID).
				WithDetail("gid", p.GID)
		}
		if count > 0 {
			delta.CreateGroup = !found
		} else {
			delta.RemoveGroup = found && name == p.GroupName
		}
	}

	p.logger.Debug().
		Int("target", count).
		Int("live", len(live)).
		Int("removed", len(delta.Removed)).
		Int("added", len(delta.Added)).
		Msg("Computed user pool delta")
	return delta, nil
}

func (p *UserPool) Apply() error {
	delta, err := p.delta(p.Count)
	if err != nil {
		return err
	}

	for _, u := range delta.Removed {
		if err := p.run("userdel", u.Name); err != nil {
			return err
		}
	}
	if delta.CreateGroup {
		if err := p.run("groupadd", "--system", "--gid", strconv.Itoa(p.GID), p.GroupName); err != nil {
			return err
		}
	}
	for _, u := range delta.Added {
		if err := p.run("useradd", p.useraddArgs(u)...); err != nil {
			return err
		}
	}
	return nil
}

func (p *UserPool) DryApply() (Plan, error) {
	delta, err := p.delta(p.Count)
	if err != nil {
		return Plan{}, err
	}
	return p.plan(delta), nil
}

// Delete removes every pool user in the scan window, then the build group.
func (p *UserPool) Delete() error {
	delta, err := p.delta(0)
	if err != nil {
		return err
	}

	for _, u := range delta.Removed {
		if err := p.run("userdel", u.Name); err != nil {
			return err
		}
	}
	if delta.RemoveGroup {
		if err := p.run("groupdel", p.GroupName); err != nil {
			return err
		}
	}
	return nil
}

func (p *UserPool) DryDelete() (Plan, error) {
	delta, err := p.delta(0)
	if err != nil {
		return Plan{}, err
	}
	return p.plan(delta), nil
}

func (p *UserPool) plan(delta Delta) Plan {
	plan := Plan{Step: p.Name()}
	for _, u := range delta.Removed {
		plan.Changes = append(plan.Changes, Change{
			Attribute: "user " + u.Name, Action: ActionRemove, Current: "uid " + strconv.Itoa(u.UID),
		})
	}
	if delta.CreateGroup {
		plan.Changes = append(plan.Changes, Change{
			Attribute: "group " + p.GroupName, Action: ActionCreate, Desired: "gid " + strconv.Itoa(p.GID),
		})
	}
	for _, u := range delta.Added {
		plan.Changes = append(plan.Changes, Change{
			Attribute: "user " + u.Name, Action: ActionCreate, Desired: "uid " + strconv.Itoa(u.UID),
		})
	}
	if delta.RemoveGroup {
		plan.Changes = append(plan.Changes, Change{
			Attribute: "group " + p.GroupName, Action: ActionRemove, Current: "gid " + strconv.Itoa(p.GID),
		})
	}
	return plan
}

func (p *UserPool) useraddArgs(u User) []string {
	args := []string{
		"--system",
		"--no-create-home",
		"--comment", fmt.Sprintf("Nix build user %d", u.UID-p.BaseUID),
		"--gid", strconv.Itoa(p.GID),
	}
	if p.HomeDir != "" {
		args = append(args, "--home-dir", p.HomeDir)
	}
	if p.Shell != "" {
		args = append(args, "--shell", p.Shell)
	}
	return append(args, "--uid", strconv.Itoa(u.UID), u.Name)
}

// run invokes a user-management command; a non-zero exit is fatal.
func (p *UserPool) run(name string, args ...string) error {
	res, err := p.accounts.Run(name, args...)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalCommand, "failed to run %s", name).
			WithDetail("command", name).
			WithDetail("args", args)
	}
	p.logger.Debug().
		Str("command", name).
		Int("exit_code", res.ExitCode).
		Str("stdout", res.Stdout).
		Str("stderr", res.Stderr).
		Msg("Command finished")
	if !res.Success() {
		return errors.Newf(errors.ErrExternalCommand, "%s %s exited with status %d: %s",
			name, strings.Join(args, " "), res.ExitCode, strings.TrimSpace(res.Stderr)).
			WithDetail("command", name).
			WithDetail("args", args).
			WithDetail("exit_code", res.ExitCode).
			WithDetail("stdout", res.Stdout).
			WithDetail("stderr", res.Stderr)
	}
	return nil
}

func sortUsers(users []User) {
	sort.Slice(users, func(i, j int) bool { return users[i].UID < users[j].UID })
}
