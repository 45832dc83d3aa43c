//go:build !windows

package autostart

import "strings"

var execEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

// quoteArg follows the desktop entry Exec quoting rules.
func quoteArg(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\"'\\$`") {
		return value
	}
	return `"` + execEscaper.Replace(value) + `"`
}
