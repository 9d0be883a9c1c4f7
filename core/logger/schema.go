package logger

import "strings"

// Level names as written to the "level" field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var allowedStatus = map[string]string{
	"ok":        "ok",
	"fail":      "fail",
	"skip":      "skip",
	"retry":     "retry",
	"fallback":  "fallback",
	"cancelled": "cancelled",
}

var allowedOutcome = map[string]string{
	"ok":        "ok",
	"fail":      "fail",
	"fallback":  "fallback",
	"cancelled": "cancelled",
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return "", false
	}
	if mapped, ok := allowedStatus[status]; ok {
		return mapped, true
	}
	return status, false
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	if outcome == "" {
		return "", false
	}
	val, ok := allowedOutcome[outcome]
	return val, ok
}

// defaultKeyOrder lists the fields written first, in this order; the rest follow alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"kind",
	"command",
	"cb_key",
	"category",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"provider",
	"http_code",
	"err",
	"err_code",
	"error_kind",
	"cause",
	"attempts",
	"attempt",
	"elapsed_ms",
}
