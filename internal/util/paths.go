package util

import (
	"net/url"
	"runtime"
	"strings"
	"unicode"
)

// ParseDroppedPaths turns the text a terminal pastes when files are dragged
// onto it into file paths.
// - Whitespace separates paths unless quoted or backslash-escaped
//   (macOS Terminal/iTerm escape, GNOME/KDE terminals quote)
// - Single quotes are literal, double quotes honor backslash escapes
// - file:// URLs are converted to local paths
// On Windows a backslash is a path separator, never an escape.
// Returns nil for blank input.
func ParseDroppedPaths(text string) []string {
	return parseDroppedPaths(text, runtime.GOOS == "windows")
}

func parseDroppedPaths(text string, windows bool) []string {
	var (
		paths   []string
		cur     strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)
	flush := func() {
		if inToken {
			paths = append(paths, fromFileURL(cur.String(), windows))
		}
		cur.Reset()
		inToken = false
	}

	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'' && !windows:
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return paths
}

func fromFileURL(s string, windows bool) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Path == "" {
		return s
	}
	if windows && len(u.Path) > 2 && u.Path[0] == '/' && u.Path[2] == ':' {
		// file:///C:/Users/... names drive C.
		return u.Path[1:]
	}
	return u.Path
}
