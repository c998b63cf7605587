// Package output renders installer results for the terminal.
//
// Three formats are supported: styled terminal text (lipgloss), plain
// text, and YAML for scripts. FormatAuto picks styled or plain text from
// the destination: NO_COLOR, a non-terminal writer or a terminal without
// colour support all fall back to plain text.
package output
