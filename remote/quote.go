package remote

import "strings"

var doubleQuoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"`", "\\`",
)

// Quote escapes a path for safe interpolation into a remote shell script.
// A leading "~/" is rewritten to "$HOME/" so that it expands on the remote
// host rather than being quoted into a literal tilde.
func Quote(path string) string {
	if path == "~" {
		return `"$HOME"`
	}
	if strings.HasPrefix(path, "~/") {
		return `"$HOME/` + doubleQuoteEscaper.Replace(path[2:]) + `"`
	}
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
