package core

import (
	"os"
	"strings"

	"github.com/arthur-debert/nix-installer/pkg/assets"
	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/arthur-debert/nix-installer/pkg/nixconf"
)

// BuildUsersGroupKey names the build group in nix.conf.
const BuildUsersGroupKey = "build-users-group"

// NixConfMode is the mode of a nix.conf the installer writes.
const NixConfMode os.FileMode = 0644

// NixConfChange reports what happened to nix.conf.
type NixConfChange struct {
	Path    string `yaml:"path"`
	Created bool   `yaml:"created"`
	Changed bool   `yaml:"changed"`
	Written bool   `yaml:"written"`
}

// LoadNixConf parses the nix.conf at path. A missing file is an empty
// document and exists is false.
func LoadNixConf(fs gateway.Filesystem, path string) (doc *nixconf.Document, exists bool, err error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, false, errors.Filesystem(err, "read", path)
		}
		data, exists = nil, false
	} else {
		exists = true
	}

	doc, err = parse(data, path)
	return doc, exists, err
}

// SaveNixConf writes doc to path.
func SaveNixConf(fs gateway.Filesystem, path string, doc *nixconf.Document) error {
	if err := fs.WriteFile(path, doc.Bytes(), NixConfMode); err != nil {
		return errors.Filesystem(err, "write", path)
	}
	return nil
}

// EnsureNixConf makes the nix.conf at path name group as the build users
// group. A missing file is seeded from the default asset. The file is
// only written when write is set and the content differs from disk.
func EnsureNixConf(fs gateway.Filesystem, path, group string, write bool) (*NixConfChange, error) {
	logger := logging.GetLogger("core.nixconf").With().Str("path", path).Logger()

	data, err := fs.ReadFile(path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Filesystem(err, "read", path)
	}
	if !exists {
		data = assets.DefaultNixConf()
	}

	doc, err := parse(data, path)
	if err != nil {
		return nil, err
	}

	if current, ok := doc.Get(BuildUsersGroupKey); !ok || current != group {
		doc.Update(BuildUsersGroupKey, group)
	}

	change := &NixConfChange{
		Path:    path,
		Created: !exists,
		Changed: !exists || doc.HasChanged(),
	}
	if !change.Changed {
		logger.Debug().Msg("nix.conf already up to date")
		return change, nil
	}
	if !write {
		logger.Info().Bool("created", change.Created).Msg("nix.conf would change")
		return change, nil
	}

	if err := SaveNixConf(fs, path, doc); err != nil {
		return change, err
	}
	change.Written = true
	logger.Info().Bool("created", change.Created).Msg("nix.conf written")
	return change, nil
}

// ConfigGet returns key's value from the nix.conf at path.
func ConfigGet(fs gateway.Filesystem, path, key string) (string, bool, error) {
	doc, _, err := LoadNixConf(fs, path)
	if err != nil {
		return "", false, err
	}
	value, ok := doc.Get(key)
	return value, ok, nil
}

// ConfigSet sets key in the nix.conf at path. An empty comment keeps the
// record's existing comment. It reports whether the file was written.
func ConfigSet(fs gateway.Filesystem, path, key, value, comment string) (bool, error) {
	if err := ValidateSetting(key, value); err != nil {
		return false, err
	}
	doc, _, err := LoadNixConf(fs, path)
	if err != nil {
		return false, err
	}
	ApplySetting(doc, key, value, comment)
	return saveIfChanged(fs, path, doc)
}

// ApplySetting sets key to value in doc. A non-empty comment replaces the
// record's comment block; an empty one leaves the existing lines alone.
func ApplySetting(doc *nixconf.Document, key, value, comment string) {
	if comment == "" {
		doc.Update(key, value)
		return
	}
	doc.Insert(key, nixconf.CommentedSetting{Value: value, Comment: comment})
}

// ConfigUnset removes key from the nix.conf at path. It reports whether
// the file was written.
func ConfigUnset(fs gateway.Filesystem, path, key string) (bool, error) {
	doc, _, err := LoadNixConf(fs, path)
	if err != nil {
		return false, err
	}
	doc.Remove(key)
	return saveIfChanged(fs, path, doc)
}

// ConfigList returns every setting of the nix.conf at path in file order.
func ConfigList(fs gateway.Filesystem, path string) ([]Setting, error) {
	doc, _, err := LoadNixConf(fs, path)
	if err != nil {
		return nil, err
	}
	keys := doc.Keys()
	settings := make([]Setting, 0, len(keys))
	for _, k := range keys {
		value, _ := doc.Get(k)
		comment, _ := doc.Comment(k)
		settings = append(settings, Setting{Key: k, Value: value, Comment: comment})
	}
	return settings, nil
}

// Setting is one nix.conf entry.
type Setting struct {
	Key     string `yaml:"key"`
	Value   string `yaml:"value"`
	Comment string `yaml:"comment,omitempty"`
}

// parse keeps the parser's error code and details and adds the path.
func parse(data []byte, path string) (*nixconf.Document, error) {
	doc, err := nixconf.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "parsing %s", path).
			WithDetails(errors.GetErrorDetails(err)).
			WithDetail("path", path)
	}
	return doc, nil
}

func saveIfChanged(fs gateway.Filesystem, path string, doc *nixconf.Document) (bool, error) {
	if !doc.HasChanged() {
		return false, nil
	}
	if err := SaveNixConf(fs, path, doc); err != nil {
		return false, err
	}
	return true, nil
}

// ValidateSetting rejects names and values that would not survive a
// round trip through nix.conf.
func ValidateSetting(key, value string) error {
	if key == "" {
		return errors.New(errors.ErrInvalidInput, "setting name must not be empty")
	}
	if strings.ContainsAny(key, "=# \t\r\n") {
		return errors.Newf(errors.ErrInvalidInput, "invalid setting name %q", key).
			WithDetail("key", key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return errors.Newf(errors.ErrInvalidInput, "value for %s spans several lines", key).
			WithDetail("key", key)
	}
	return nil
}
