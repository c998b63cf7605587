// pkg/nixconf/document_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test nix.conf parsing, canonicalization and record editing

package nixconf_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/nixconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConf = `max-jobs = auto

# Use all available CPU cores in the system
# Pass -jN to build jobs where N is the number of cores
cores = 0

bogus = value
# Since 2.2, Nix has sandboxing enabled by default
sandbox = true
# Make our impure builds work by letting them access the following
extra-sandbox-paths = /lib /lib64 /usr/bin

# Disable signatures as we trust the transport and storage
require-sigs = false
# First download from our own binary-cache, then upstream
substituters = s3://my-awesome-nix-cache https://cache.nixos.org
`

func mustParse(t *testing.T, text string) *nixconf.Document {
	t.Helper()
	doc, err := nixconf.Parse([]byte(text))
	require.NoError(t, err)
	return doc
}

func TestParse_CanonicalRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"single_setting", "max-jobs = auto\n"},
		{"empty_value", "something =\n"},
		{"commented_setting", "# keep cores\n# really\ncores = 0\n"},
		{"blank_runs", "\n\na = b\n\n\n\nc = d\n\n"},
		{"orphan_comment", "# just a note\n\na = b\n"},
		{"trailing_orphan_comment", "a = b\n# the end\n"},
		{"indented_comment", "   # indented note\na = b\n"},
		{"whitespace_only_blank", "a = b\n  \t\nc = d\n"},
		{"sample", sampleConf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.text)
			assert.Equal(t, tt.text, doc.String())
			assert.False(t, doc.HasChanged())
		})
	}
}

func TestParse_Canonicalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no_space_before_equals", "max-jobs= auto", "max-jobs = auto\n"},
		{"no_spaces", "max-jobs=auto\n", "max-jobs = auto\n"},
		{"wide_spaces", "max-jobs   =    auto   \n", "max-jobs = auto\n"},
		{"empty_value_trailing_space", "something=  \n", "something =\n"},
		{"missing_final_newline", "a = b", "a = b\n"},
		{"crlf", "a = b\r\n# c\r\nd = e\r\n", "a = b\n# c\nd = e\n"},
		{"value_keeps_inner_equals", "a=b=c", "a = b=c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.in)
			assert.Equal(t, tt.want, doc.String())
			assert.True(t, doc.HasChanged())

			again := mustParse(t, doc.String())
			assert.Equal(t, doc.String(), again.String())
			assert.False(t, again.HasChanged())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Run("malformed_line", func(t *testing.T) {
		_, err := nixconf.Parse([]byte("a = b\n\nthis is not a setting\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedLine))
		assert.Equal(t, 3, errors.GetErrorDetails(err)["line"])
	})

	t.Run("malformed_after_comment", func(t *testing.T) {
		_, err := nixconf.Parse([]byte("# comment\nnope\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedLine))
		assert.Equal(t, 2, errors.GetErrorDetails(err)["line"])
	})

	t.Run("empty_key", func(t *testing.T) {
		_, err := nixconf.Parse([]byte(" = value\n"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedLine))
	})

	t.Run("duplicate_key", func(t *testing.T) {
		doc, err := nixconf.Parse([]byte("cores = 0\nsandbox = true\n\n# again\ncores = 8\n"))
		require.Error(t, err)
		assert.Nil(t, doc)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateKey))

		details := errors.GetErrorDetails(err)
		assert.Equal(t, "cores", details["key"])
		assert.Equal(t, 1, details["first_line"])
		assert.Equal(t, 5, details["line"])
		assert.Contains(t, err.Error(), "line 5")
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("duplicate_key_non_canonical_spelling", func(t *testing.T) {
		_, err := nixconf.Parse([]byte("cores = 0\ncores=1\n"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateKey))
	})
}

func TestDocument_Get(t *testing.T) {
	doc := mustParse(t, sampleConf)

	v, ok := doc.Get("substituters")
	assert.True(t, ok)
	assert.Equal(t, "s3://my-awesome-nix-cache https://cache.nixos.org", v)

	_, ok = doc.Get("min-free")
	assert.False(t, ok)
	assert.Equal(t, 7, doc.Len())
}

func TestDocument_CoresScenario(t *testing.T) {
	doc := mustParse(t, "max-jobs = auto\n\n# keep cores\ncores = 0\n")

	v, ok := doc.Get("cores")
	require.True(t, ok)
	assert.Equal(t, "0", v)

	prev, had := doc.Insert("cores", nixconf.CommentedSetting{Value: "8", Comment: "keep cores"})
	assert.True(t, had)
	assert.Equal(t, "0", prev)

	v, _ = doc.Get("cores")
	assert.Equal(t, "8", v)
	comment, _ := doc.Comment("cores")
	assert.Equal(t, "keep cores", comment)
	assert.Equal(t, "max-jobs = auto\n\n# keep cores\ncores = 8\n", doc.String())
	assert.True(t, doc.HasChanged())
}

func TestDocument_InsertSameValueIsUnchanged(t *testing.T) {
	doc := mustParse(t, sampleConf)

	doc.Set("max-jobs", "auto")
	assert.False(t, doc.HasChanged())

	doc.Insert("sandbox", nixconf.CommentedSetting{
		Value:   "true",
		Comment: "Since 2.2, Nix has sandboxing enabled by default",
	})
	assert.False(t, doc.HasChanged())
	assert.Equal(t, sampleConf, doc.String())
}

func TestDocument_UpdateKeepsCommentLines(t *testing.T) {
	const input = "#keep cores\n  # indented\ncores = 0\n\nsandbox = true\n"
	doc := mustParse(t, input)

	prev, had := doc.Update("cores", "0")
	assert.True(t, had)
	assert.Equal(t, "0", prev)
	assert.False(t, doc.HasChanged())
	assert.Equal(t, input, doc.String())

	doc.Update("cores", "8")
	assert.Equal(t, "#keep cores\n  # indented\ncores = 8\n\nsandbox = true\n", doc.String())

	doc.Update("max-jobs", "auto")
	assert.Equal(t, []string{"cores", "sandbox", "max-jobs"}, doc.Keys())
	assert.Equal(t, "#keep cores\n  # indented\ncores = 8\n\nsandbox = true\nmax-jobs = auto\n", doc.String())
}

func TestDocument_InsertReplacesOnlyItsRecord(t *testing.T) {
	doc := mustParse(t, sampleConf)

	doc.Insert("cores", nixconf.CommentedSetting{
		Value:   "0",
		Comment: "Use all available CPU cores\non this system",
	})
	assert.True(t, doc.HasChanged())

	want := strings.Replace(sampleConf,
		"# Use all available CPU cores in the system\n# Pass -jN to build jobs where N is the number of cores\n",
		"# Use all available CPU cores\n# on this system\n", 1)
	assert.Equal(t, want, doc.String())

	// a record growing by a line shifts the later ones
	doc.Insert("cores", nixconf.CommentedSetting{Value: "4", Comment: "one\ntwo\nthree"})
	doc.Set("sandbox", "false")
	doc.Insert("require-sigs", nixconf.CommentedSetting{Value: "true"})

	assert.Equal(t, `max-jobs = auto

# one
# two
# three
cores = 4

bogus = value
sandbox = false
# Make our impure builds work by letting them access the following
extra-sandbox-paths = /lib /lib64 /usr/bin

require-sigs = true
# First download from our own binary-cache, then upstream
substituters = s3://my-awesome-nix-cache https://cache.nixos.org
`, doc.String())

	reparsed := mustParse(t, doc.String())
	assert.Equal(t, reparsed.Keys(), doc.Keys())
}

func TestDocument_InsertNewKeyAppends(t *testing.T) {
	doc := mustParse(t, "a = 1\n")

	prev, had := doc.Insert("b", nixconf.CommentedSetting{Value: "2", Comment: "second"})
	assert.False(t, had)
	assert.Empty(t, prev)

	doc.Set("c", "")
	assert.Equal(t, "a = 1\n# second\nb = 2\nc =\n", doc.String())
	assert.Equal(t, []string{"a", "b", "c"}, doc.Keys())
}

func TestDocument_InsertIntoEmpty(t *testing.T) {
	doc := mustParse(t, "")
	doc.Set("build-users-group", "nixbld")

	assert.Equal(t, "build-users-group = nixbld\n", doc.String())
	assert.True(t, doc.HasChanged())
}

func TestDocument_Remove(t *testing.T) {
	doc := mustParse(t, sampleConf)

	prev, had := doc.Remove("sandbox")
	assert.True(t, had)
	assert.Equal(t, "true", prev)
	_, ok := doc.Get("sandbox")
	assert.False(t, ok)

	want := strings.Replace(sampleConf,
		"# Since 2.2, Nix has sandboxing enabled by default\nsandbox = true\n", "", 1)
	assert.Equal(t, want, doc.String())

	// later records still edit in place after the shift
	doc.Set("require-sigs", "true")
	want = strings.Replace(want,
		"# Disable signatures as we trust the transport and storage\nrequire-sigs = false",
		"require-sigs = true", 1)
	assert.Equal(t, want, doc.String())
}

func TestDocument_RemoveUnknownIsNoop(t *testing.T) {
	doc := mustParse(t, sampleConf)
	before := doc.String()

	prev, had := doc.Remove("min-free")
	assert.False(t, had)
	assert.Empty(t, prev)
	assert.Equal(t, before, doc.String())
	assert.False(t, doc.HasChanged())
}

func TestDocument_RemoveThenReinsert(t *testing.T) {
	doc := mustParse(t, "a = 1\n# b comment\nb = 2\nc = 3\n")

	doc.Remove("b")
	doc.Set("b", "2")

	assert.Equal(t, "a = 1\nc = 3\nb = 2\n", doc.String())
	assert.Equal(t, []string{"a", "c", "b"}, doc.Keys())
}

func TestDocument_Comment(t *testing.T) {
	doc := mustParse(t, sampleConf)

	c, ok := doc.Comment("cores")
	require.True(t, ok)
	assert.Equal(t, "Use all available CPU cores in the system\nPass -jN to build jobs where N is the number of cores", c)

	c, ok = doc.Comment("bogus")
	require.True(t, ok)
	assert.Empty(t, c)

	_, ok = doc.Comment("nope")
	assert.False(t, ok)
}

// randomCanonicalDoc builds a document of canonical records separated by
// blank lines, with unique keys.
func randomCanonicalDoc(r *rand.Rand) (string, map[string]string) {
	var b strings.Builder
	values := make(map[string]string)
	for i := 0; i < r.Intn(8); i++ {
		if r.Intn(3) == 0 {
			b.WriteString("\n")
		}
		for j := 0; j < r.Intn(3); j++ {
			fmt.Fprintf(&b, "# note %d.%d\n", i, j)
		}
		key := fmt.Sprintf("key-%d", i)
		value := fmt.Sprintf("value %d", r.Intn(1000))
		values[key] = value
		fmt.Fprintf(&b, "%s = %s\n", key, value)
	}
	return b.String(), values
}

func TestDocument_RandomizedEdits(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		text, values := randomCanonicalDoc(r)
		doc := mustParse(t, text)
		require.Equal(t, text, doc.String())
		require.False(t, doc.HasChanged())

		for key, value := range values {
			got, ok := doc.Get(key)
			require.True(t, ok)
			require.Equal(t, value, got)
		}

		// edit one key, every other key must keep its exact record text
		if len(values) == 0 {
			continue
		}
		keys := doc.Keys()
		target := keys[r.Intn(len(keys))]
		before := records(t, doc)

		if r.Intn(2) == 0 {
			doc.Insert(target, nixconf.CommentedSetting{Value: "edited", Comment: "edited\nrecord"})
		} else {
			doc.Remove(target)
		}

		after := records(t, doc)
		for key, rec := range before {
			if key == target {
				continue
			}
			assert.Equal(t, rec, after[key], "record of %s changed", key)
		}
	}
}

// records re-parses the document and returns each key's comment and value.
func records(t *testing.T, doc *nixconf.Document) map[string]string {
	t.Helper()
	reparsed := mustParse(t, doc.String())
	out := make(map[string]string)
	for _, key := range reparsed.Keys() {
		c, _ := reparsed.Comment(key)
		v, _ := reparsed.Get(key)
		out[key] = c + "|" + v
	}
	return out
}
