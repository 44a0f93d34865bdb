package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes user-supplied text for Telegram HTML parse mode.
// Newlines are preserved; everything else that could open a tag is neutralized.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// DisplayName builds a safe display name from Telegram first/last name parts.
func DisplayName(first, last string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		name = "User"
	}
	return EscapeHTML(name)
}
