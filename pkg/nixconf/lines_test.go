package nixconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineHelpers(t *testing.T) {
	assert.True(t, isComment("#comment"))
	assert.True(t, isComment("   #indented"))
	assert.False(t, isComment("non-comment"))
	assert.False(t, isComment("a=b   #non-comment"))

	assert.True(t, isBlank(""))
	assert.True(t, isBlank(" "))
	assert.True(t, isBlank(" \t"))
	assert.False(t, isBlank(" \t,"))
	assert.False(t, isBlank("#a b c #$@#$=b   #non-comment"))
}

func TestSplitSetting(t *testing.T) {
	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"a=b   #non-comment", "a", "b   #non-comment", true},
		{"a= b   #non-comment", "a", "b   #non-comment", true},
		{"a  = b   #non-comment ", "a", "b   #non-comment", true},
		{"a b c #$@#$=b   #non-comment", "a b c #$@#$", "b   #non-comment", true},
		{"key =", "key", "", true},
		{"no equals here", "", "", false},
		{"=value", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, value, ok := splitSetting(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestFormatPair(t *testing.T) {
	assert.Equal(t, "max-jobs = auto", formatPair("max-jobs", "auto"))
	assert.Equal(t, "something =", formatPair("something", ""))
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{""}, splitLines("\n"))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\nb"))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, splitLines("a\r\n\r\nb\r\n"))
}

func TestHashText(t *testing.T) {
	assert.Equal(t, hashText("foo"), hashText("foo"))
	assert.NotEqual(t, hashText("foo"), hashText("bar"))
}

func TestSpliceShiftsOnlyLaterSpans(t *testing.T) {
	doc, err := Parse([]byte("a = 1\n\n# b\nb = 2\nc = 3\n"))
	assert.NoError(t, err)
	assert.Equal(t, span{0, 1}, doc.spans["a"])
	assert.Equal(t, span{2, 4}, doc.spans["b"])
	assert.Equal(t, span{4, 5}, doc.spans["c"])

	doc.Insert("b", CommentedSetting{Value: "2", Comment: "b\nmore b"})
	assert.Equal(t, span{0, 1}, doc.spans["a"])
	assert.Equal(t, span{2, 5}, doc.spans["b"])
	assert.Equal(t, span{5, 6}, doc.spans["c"])

	doc.Remove("a")
	assert.Equal(t, span{1, 4}, doc.spans["b"])
	assert.Equal(t, span{4, 5}, doc.spans["c"])
}
