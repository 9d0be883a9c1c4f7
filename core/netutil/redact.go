package netutil

import "regexp"

// botTokenRe matches the "bot<id>:<secret>" path segment of Bot API URLs.
var botTokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// RedactError returns err's message with Bot API tokens replaced, or "" for nil.
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return botTokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
