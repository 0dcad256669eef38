package markdown

import (
	"net/url"
	"regexp"
	"strings"
)

var reScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// SanitizeURL validates a URL before it is used as an href or src attribute.
// It returns the usable URL, or "" meaning do not render it.
//
// Protocol-relative URLs are rejected to prevent scheme smuggling, and any
// control or markup character rejects the whole value to prevent attribute
// injection. Absolute URLs must be parseable http or https; anything else is
// treated as a relative path and accepted as-is.
func SanitizeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "//") {
		return ""
	}
	for _, r := range val {
		if r < 0x20 || r == 0x7f {
			return ""
		}
		switch r {
		case '<', '>', '"', '\'', '`':
			return ""
		}
	}
	if reScheme.MatchString(val) {
		parsed, err := url.Parse(val)
		if err != nil {
			return ""
		}
		switch strings.ToLower(parsed.Scheme) {
		case "http", "https":
			return val
		default:
			return ""
		}
	}
	return val
}
