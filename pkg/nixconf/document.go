package nixconf

import (
	"sort"
	"strings"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/zeebo/blake3"
)

type digest [32]byte

func hashText(s string) digest {
	return blake3.Sum256([]byte(s))
}

// span is a half-open range of line indexes [start, end).
type span struct {
	start int
	end   int
}

func (s span) len() int {
	return s.end - s.start
}

// CommentedSetting is the input to Insert: the new value and the comment
// text placed above it, one "# " line per line of Comment.
type CommentedSetting struct {
	Value   string
	Comment string
}

// Document is a parsed nix.conf.
type Document struct {
	origHash digest
	lines    []string
	spans    map[string]span
	values   map[string]string
}

// Parse reads a nix.conf body. It fails on the first line that is neither
// blank, a comment nor a setting, and on any key that appears twice.
func Parse(data []byte) (*Document, error) {
	text := string(data)
	raw := splitLines(text)

	doc := &Document{
		origHash: hashText(text),
		lines:    make([]string, 0, len(raw)),
		spans:    make(map[string]span),
		values:   make(map[string]string),
	}
	// 1-based line of each key's setting line, for duplicate reports
	seenAt := make(map[string]int)

	i := 0
	for i < len(raw) {
		for i < len(raw) && isBlank(raw[i]) {
			doc.lines = append(doc.lines, raw[i])
			i++
		}

		start := i
		for i < len(raw) && isComment(raw[i]) {
			doc.lines = append(doc.lines, raw[i])
			i++
		}

		if i == len(raw) || isBlank(raw[i]) {
			// end of input, or a comment block with no setting under it
			continue
		}

		key, value, ok := splitSetting(raw[i])
		if !ok {
			return nil, errors.Newf(errors.ErrMalformedLine, "line %d: malformed line: %s", i+1, raw[i]).
				WithDetail("line", i+1).
				WithDetail("text", raw[i])
		}
		if first, dup := seenAt[key]; dup {
			return nil, errors.Newf(errors.ErrDuplicateKey,
				"line %d: duplicate entry for %q (first seen on line %d)", i+1, key, first).
				WithDetail("key", key).
				WithDetail("first_line", first).
				WithDetail("line", i+1)
		}

		doc.lines = append(doc.lines, formatPair(key, value))
		doc.spans[key] = span{start: start, end: i + 1}
		doc.values[key] = value
		seenAt[key] = i + 1
		i++
	}

	return doc, nil
}

// Get returns the value of key.
func (d *Document) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Comment returns the comment text of key's record with the "#" markers
// stripped, one line per comment line.
func (d *Document) Comment(key string) (string, bool) {
	s, ok := d.spans[key]
	if !ok {
		return "", false
	}
	var out []string
	for _, line := range d.lines[s.start : s.end-1] {
		text := strings.TrimPrefix(strings.TrimSpace(line), "#")
		out = append(out, strings.TrimPrefix(text, " "))
	}
	return strings.Join(out, "\n"), true
}

// Keys returns the setting keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.spans))
	for k := range d.spans {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return d.spans[keys[i]].start < d.spans[keys[j]].start
	})
	return keys
}

// Len returns the number of settings.
func (d *Document) Len() int {
	return len(d.values)
}

// Insert replaces key's whole record (comments and setting line) with the
// comment lines of setting followed by the canonical setting line. Unknown
// keys are appended at the end. It returns the previous value, if any.
func (d *Document) Insert(key string, setting CommentedSetting) (string, bool) {
	replacement := make([]string, 0, 4)
	for _, line := range splitLines(setting.Comment) {
		replacement = append(replacement, strings.TrimRight("# "+line, " \t"))
	}
	replacement = append(replacement, formatPair(key, setting.Value))

	old, exists := d.spans[key]
	if !exists {
		old = span{start: len(d.lines), end: len(d.lines)}
	}

	d.splice(old, replacement)
	d.spans[key] = span{start: old.start, end: old.start + len(replacement)}

	prev, had := d.values[key]
	d.values[key] = setting.Value
	return prev, had
}

// Set is Insert with no comment.
func (d *Document) Set(key, value string) (string, bool) {
	return d.Insert(key, CommentedSetting{Value: value})
}

// Update changes key's value in place. Only the setting line is rewritten;
// the comment lines above it stay byte for byte. Unknown keys are appended
// without a comment. It returns the previous value, if any.
func (d *Document) Update(key, value string) (string, bool) {
	old, exists := d.spans[key]
	if !exists {
		return d.Set(key, value)
	}

	d.lines[old.end-1] = formatPair(key, value)
	prev := d.values[key]
	d.values[key] = value
	return prev, true
}

// Remove deletes key's record. Removing an unknown key changes nothing.
func (d *Document) Remove(key string) (string, bool) {
	old, exists := d.spans[key]
	if !exists {
		return "", false
	}

	d.splice(old, nil)
	delete(d.spans, key)

	prev := d.values[key]
	delete(d.values, key)
	return prev, true
}

// splice replaces the lines in old with replacement and moves every span
// that starts at or after old.end by the change in line count.
func (d *Document) splice(old span, replacement []string) {
	delta := len(replacement) - old.len()

	lines := make([]string, 0, len(d.lines)+delta)
	lines = append(lines, d.lines[:old.start]...)
	lines = append(lines, replacement...)
	lines = append(lines, d.lines[old.end:]...)
	d.lines = lines

	if delta == 0 {
		return
	}
	for k, s := range d.spans {
		if s.start >= old.end && s != old {
			d.spans[k] = span{start: s.start + delta, end: s.end + delta}
		}
	}
}

// HasChanged reports whether the serialized document differs from the
// text it was parsed from.
func (d *Document) HasChanged() bool {
	return d.origHash != hashText(d.String())
}

// String serializes the document. Every line, including the last, ends
// in a newline; an empty document is the empty string.
func (d *Document) String() string {
	if len(d.lines) == 0 {
		return ""
	}
	return strings.Join(d.lines, "\n") + "\n"
}

// Bytes is String as a byte slice.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}
