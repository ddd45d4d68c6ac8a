// Package output renders latchctl results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how a command renders its result.
type Format string

const (
	// FormatTable renders a human-readable table. The default.
	FormatTable Format = "table"
	// FormatJSON renders indented JSON for scripts.
	FormatJSON Format = "json"
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat maps the -o flag value onto a Format. The empty string
// means table; "yml" is accepted as an alias for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Success writes msg followed by a newline, in green when color is on.
func Success(w io.Writer, msg string, color bool) {
	if color {
		_, _ = fmt.Fprintf(w, "\033[32m%s\033[0m\n", msg)
		return
	}
	_, _ = fmt.Fprintln(w, msg)
}
