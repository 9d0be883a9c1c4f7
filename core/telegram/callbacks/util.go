// Package callbacks decodes inline button callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// uniqueMarker prefixes data produced by telebot's Unique buttons: "\f<unique>|<payload>".
const uniqueMarker = "\f"

// ParseCallbackData returns the button key and optional payload. Raw tokens,
// which carry no marker and no separator, come back as the key alone.
func ParseCallbackData(cb *tele.Callback) (key, payload string) {
	if cb == nil {
		return "", ""
	}
	key, payload, _ = strings.Cut(strings.TrimPrefix(cb.Data, uniqueMarker), "|")
	return strings.TrimSpace(key), payload
}

// Key prefers the Unique telebot already extracted.
func Key(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	key, _ := ParseCallbackData(cb)
	return key
}

// CallbackKey is Key for the callback carried by c.
func CallbackKey(c tele.Context) string {
	if c == nil {
		return ""
	}
	return Key(c.Callback())
}
