package steps

import (
	"fmt"
	"os"
	"strconv"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/rs/zerolog"
)

// Directory ensures Path is a directory with exactly Mode, Owner and Group.
//
// Delete removes the directory and everything below it. A node at Path
// that is not a directory is left alone and reported as an error.
type Directory struct {
	Path  string
	Mode  os.FileMode
	Owner int
	Group int

	fs     gateway.Filesystem
	logger zerolog.Logger
}

// NewDirectory creates a Directory step backed by fs.
func NewDirectory(fs gateway.Filesystem, path string, mode os.FileMode, owner, group int) *Directory {
	return &Directory{
		Path:   path,
		Mode:   mode & gateway.ModeMask,
		Owner:  owner,
		Group:  group,
		fs:     fs,
		logger: logging.GetLogger("steps.directory").With().Str("path", path).Logger(),
	}
}

func (d *Directory) Name() string {
	return "directory " + d.Path
}

func (d *Directory) stat() (gateway.NodeInfo, error) {
	info, err := d.fs.Stat(d.Path)
	if err != nil {
		return info, errors.Filesystem(err, "stat", d.Path)
	}
	return info, nil
}

func (d *Directory) unexpected(kind gateway.NodeKind) error {
	return errors.Newf(errors.ErrFilesystem, "%s is a %s, expected a directory", d.Path, kind).
		WithDetail("path", d.Path).
		WithDetail("kind", kind.String())
}

func (d *Directory) Apply() error {
	info, err := d.stat()
	if err != nil {
		return err
	}

	switch info.Kind {
	case gateway.NodeFile:
		d.logger.Info().Msg("Path is a file when a directory was expected, removing")
		if err := d.fs.RemoveFile(d.Path); err != nil {
			return errors.Filesystem(err, "remove file", d.Path)
		}
		if err := d.fs.MkdirAll(d.Path); err != nil {
			return errors.Filesystem(err, "mkdir", d.Path)
		}
	case gateway.NodeDirectory:
		d.logger.Debug().Msg("Directory exists, updating ownership and mode")
	case gateway.NodeAbsent:
		d.logger.Info().Msg("Creating directory")
		if err := d.fs.MkdirAll(d.Path); err != nil {
			return errors.Filesystem(err, "mkdir", d.Path)
		}
	default:
		return d.unexpected(info.Kind)
	}

	// ownership and mode are always reset, so reruns converge
	if err := d.fs.Chown(d.Path, d.Owner, d.Group); err != nil {
		return errors.Filesystem(err, "chown", d.Path)
	}
	if err := d.fs.Chmod(d.Path, d.Mode); err != nil {
		return errors.Filesystem(err, "chmod", d.Path)
	}
	return nil
}

func (d *Directory) DryApply() (Plan, error) {
	info, err := d.stat()
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Step: d.Name()}
	desiredOwner := strconv.Itoa(d.Owner)
	desiredGroup := strconv.Itoa(d.Group)
	desiredMode := octalMode(d.Mode)

	switch info.Kind {
	case gateway.NodeDirectory:
		plan.Changes = []Change{
			{Attribute: "type", Action: ActionNone, Current: info.Kind.String(), Desired: info.Kind.String()},
			compare("owner", strconv.Itoa(info.UID), desiredOwner),
			compare("group", strconv.Itoa(info.GID), desiredGroup),
			compare("mode", octalMode(info.Mode), desiredMode),
		}
	case gateway.NodeAbsent, gateway.NodeFile:
		typeChange := Change{Attribute: "type", Action: ActionCreate, Desired: "directory"}
		if info.Kind == gateway.NodeFile {
			typeChange = Change{Attribute: "type", Action: ActionUpdate, Current: "file", Desired: "directory"}
		}
		plan.Changes = []Change{
			typeChange,
			{Attribute: "owner", Action: ActionCreate, Desired: desiredOwner},
			{Attribute: "group", Action: ActionCreate, Desired: desiredGroup},
			{Attribute: "mode", Action: ActionCreate, Desired: desiredMode},
		}
	default:
		return plan, d.unexpected(info.Kind)
	}

	return plan, nil
}

func (d *Directory) Delete() error {
	info, err := d.stat()
	if err != nil {
		return err
	}

	switch info.Kind {
	case gateway.NodeAbsent:
		d.logger.Debug().Msg("Directory already absent")
		return nil
	case gateway.NodeDirectory:
		d.logger.Info().Msg("Removing directory tree")
		if err := d.fs.RemoveAll(d.Path); err != nil {
			return errors.Filesystem(err, "remove tree", d.Path)
		}
		return nil
	default:
		return d.unexpected(info.Kind)
	}
}

func (d *Directory) DryDelete() (Plan, error) {
	info, err := d.stat()
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Step: d.Name()}
	switch info.Kind {
	case gateway.NodeAbsent:
		plan.Changes = []Change{{Attribute: "type", Action: ActionNone, Current: "absent"}}
	case gateway.NodeDirectory:
		plan.Changes = []Change{{Attribute: "type", Action: ActionRemove, Current: "directory"}}
	default:
		return plan, d.unexpected(info.Kind)
	}
	return plan, nil
}

func compare(attribute, current, desired string) Change {
	action := ActionNone
	if current != desired {
		action = ActionUpdate
	}
	return Change{Attribute: attribute, Action: action, Current: current, Desired: desired}
}

// octalMode renders permission bits the way chmod takes them, e.g. 1775.
func octalMode(mode os.FileMode) string {
	bits := uint32(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		bits |= 04000
	}
	if mode&os.ModeSetgid != 0 {
		bits |= 02000
	}
	if mode&os.ModeSticky != 0 {
		bits |= 01000
	}
	return fmt.Sprintf("%04o", bits)
}
