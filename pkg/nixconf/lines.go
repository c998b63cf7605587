package nixconf

import "strings"

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}

// splitSetting splits a setting line at its first '='. Keys may not be
// empty; values may.
func splitSetting(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(k)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(v), true
}

func formatPair(key, value string) string {
	if value == "" {
		return key + " ="
	}
	return key + " = " + value
}

// splitLines breaks text into lines without their terminators. A final
// newline does not start an extra empty line, and a CR before LF is
// dropped.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
