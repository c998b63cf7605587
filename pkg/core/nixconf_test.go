package core_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/nix-installer/pkg/assets"
	"github.com/arthur-debert/nix-installer/pkg/core"
	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const confPath = "/etc/nix/nix.conf"

const sampleConf = `# Use all cores.
cores = 0

# Group of the build users.
build-users-group = nixbld
sandbox=true
`

func seededGateway(t *testing.T, content string) *testutil.FakeGateway {
	t.Helper()
	gw := testutil.NewFakeGateway()
	require.NoError(t, gw.MkdirAll("/etc/nix"))
	if content != "" {
		require.NoError(t, gw.WriteFile(confPath, []byte(content), 0644))
	}
	return gw
}

func readConf(t *testing.T, gw *testutil.FakeGateway) string {
	t.Helper()
	data, err := gw.ReadFile(confPath)
	require.NoError(t, err)
	return string(data)
}

func TestEnsureNixConf(t *testing.T) {
	t.Run("seeds_missing_file", func(t *testing.T) {
		gw := seededGateway(t, "")
		change, err := core.EnsureNixConf(gw, confPath, "nixbld", true)
		require.NoError(t, err)
		assert.Equal(t, core.NixConfChange{Path: confPath, Created: true, Changed: true, Written: true}, *change)
		assert.Equal(t, string(assets.DefaultNixConf()), readConf(t, gw))
	})

	t.Run("seeds_with_other_group", func(t *testing.T) {
		gw := seededGateway(t, "")
		_, err := core.EnsureNixConf(gw, confPath, "builders", true)
		require.NoError(t, err)
		assert.Contains(t, readConf(t, gw), "build-users-group = builders\n")
		assert.NotContains(t, readConf(t, gw), "nixbld")
	})

	t.Run("appends_missing_key", func(t *testing.T) {
		gw := seededGateway(t, "cores = 4\n")
		change, err := core.EnsureNixConf(gw, confPath, "nixbld", true)
		require.NoError(t, err)
		assert.False(t, change.Created)
		assert.True(t, change.Written)
		assert.Equal(t, "cores = 4\nbuild-users-group = nixbld\n", readConf(t, gw))
	})

	t.Run("leaves_correct_file_alone", func(t *testing.T) {
		gw := seededGateway(t, "cores = 4\nbuild-users-group = nixbld\n")
		gw.FailOn("write", confPath, stderrors.New("must not write"))
		change, err := core.EnsureNixConf(gw, confPath, "nixbld", true)
		require.NoError(t, err)
		assert.False(t, change.Changed)
		assert.False(t, change.Written)
	})

	t.Run("dry_run_does_not_write", func(t *testing.T) {
		gw := seededGateway(t, "build-users-group = wheel\n")
		change, err := core.EnsureNixConf(gw, confPath, "nixbld", false)
		require.NoError(t, err)
		assert.True(t, change.Changed)
		assert.False(t, change.Written)
		assert.Equal(t, "build-users-group = wheel\n", readConf(t, gw))
	})

	t.Run("rejects_malformed_file", func(t *testing.T) {
		gw := seededGateway(t, "cores = 4\nnot a setting\n")
		_, err := core.EnsureNixConf(gw, confPath, "nixbld", true)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedLine))
		details := errors.GetErrorDetails(err)
		assert.Equal(t, confPath, details["path"])
		assert.Equal(t, 2, details["line"])
	})
}

func TestConfigGetSetUnset(t *testing.T) {
	gw := seededGateway(t, sampleConf)

	value, ok, err := core.ConfigGet(gw, confPath, "sandbox")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	_, ok, err = core.ConfigGet(gw, confPath, "substituters")
	require.NoError(t, err)
	assert.False(t, ok)

	// changing a value keeps the record's comment and the rest of the
	// file; setting lines come back in canonical form
	written, err := core.ConfigSet(gw, confPath, "cores", "8", "")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, `# Use all cores.
cores = 8

# Group of the build users.
build-users-group = nixbld
sandbox = true
`, readConf(t, gw))

	// new key with a comment is appended
	written, err = core.ConfigSet(gw, confPath, "max-jobs", "auto", "Parallel builds.")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Contains(t, readConf(t, gw), "sandbox = true\n# Parallel builds.\nmax-jobs = auto\n")

	// setting the same value again writes nothing
	gw.FailOn("write", confPath, stderrors.New("must not write"))
	written, err = core.ConfigSet(gw, confPath, "max-jobs", "auto", "")
	require.NoError(t, err)
	assert.False(t, written)

	written, err = core.ConfigUnset(gw, confPath, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, written)
}

func TestConfigSet_KeepsCommentBytes(t *testing.T) {
	const input = "#keep cores\n  # indented\ncores = 0\n"
	gw := seededGateway(t, input)

	written, err := core.ConfigSet(gw, confPath, "cores", "0", "")
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, input, readConf(t, gw))

	written, err = core.ConfigSet(gw, confPath, "cores", "4", "")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "#keep cores\n  # indented\ncores = 4\n", readConf(t, gw))

	// an explicit comment replaces the block
	_, err = core.ConfigSet(gw, confPath, "cores", "4", "Use four cores.")
	require.NoError(t, err)
	assert.Equal(t, "# Use four cores.\ncores = 4\n", readConf(t, gw))
}

func TestEnsureNixConf_KeepsGroupComment(t *testing.T) {
	gw := seededGateway(t, "#builders\nbuild-users-group = wheel\n")

	_, err := core.EnsureNixConf(gw, confPath, "nixbld", true)
	require.NoError(t, err)
	assert.Equal(t, "#builders\nbuild-users-group = nixbld\n", readConf(t, gw))
}

func TestConfigUnset(t *testing.T) {
	gw := seededGateway(t, sampleConf)

	written, err := core.ConfigUnset(gw, confPath, "build-users-group")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "# Use all cores.\ncores = 0\n\nsandbox = true\n", readConf(t, gw))
}

func TestConfigSet_MissingFile(t *testing.T) {
	gw := seededGateway(t, "")

	written, err := core.ConfigSet(gw, confPath, "cores", "2", "")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "cores = 2\n", readConf(t, gw))
}

func TestConfigSet_InvalidInput(t *testing.T) {
	gw := seededGateway(t, sampleConf)

	for _, key := range []string{"", "a=b", "has space", "#x"} {
		_, err := core.ConfigSet(gw, confPath, key, "1", "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "key %q", key)
	}

	_, err := core.ConfigSet(gw, confPath, "cores", "1\n2", "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Equal(t, sampleConf, readConf(t, gw))
}

func TestConfigList(t *testing.T) {
	gw := seededGateway(t, sampleConf)

	settings, err := core.ConfigList(gw, confPath)
	require.NoError(t, err)
	assert.Equal(t, []core.Setting{
		{Key: "cores", Value: "0", Comment: "Use all cores."},
		{Key: "build-users-group", Value: "nixbld", Comment: "Group of the build users."},
		{Key: "sandbox", Value: "true"},
	}, settings)
}

func TestConfig_DuplicateKeyReported(t *testing.T) {
	gw := seededGateway(t, "cores = 1\ncores = 2\n")

	_, err := core.ConfigList(gw, confPath)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateKey))
	assert.Contains(t, err.Error(), confPath)
	assert.Equal(t, "cores", errors.GetErrorDetails(err)["key"])
}
