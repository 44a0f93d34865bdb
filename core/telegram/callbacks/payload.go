package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// PayloadInt64 parses callback payload as int64. Decision callbacks carry the
// target user identifier this way; a parse failure means a malformed action.
func PayloadInt64(c tele.Context) (int64, error) {
	p := strings.TrimSpace(CallbackPayload(c))
	return strconv.ParseInt(p, 10, 64)
}

// PayloadString returns the trimmed callback payload.
func PayloadString(c tele.Context) string {
	return strings.TrimSpace(CallbackPayload(c))
}
