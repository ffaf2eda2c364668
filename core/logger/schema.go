package logger

import "strings"

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"fatal":   LevelFatal,
}

// status describes whether an operation worked; unknown values pass through.
var allowedStatus = map[string]string{
	"ok":        "ok",
	"fail":      "fail",
	"skip":      "skip",
	"retry":     "retry",
	"ignored":   "ignored",
	"cancelled": "cancelled",
	"error":     "fail",
}

// outcome mirrors how a conversation ended; unknown values are dropped.
var allowedOutcome = map[string]string{
	"completed": "completed",
	"declined":  "declined",
	"not_found": "not_found",
	"failed":    "failed",
	"won":       "won",
	"quit":      "quit",
	"aborted":   "aborted",
	"expired":   "expired",
}

// scope is the addressing of an inbound message.
var allowedScope = map[string]string{
	"direct_message": "direct_message",
	"direct_mention": "direct_mention",
	"mention":        "mention",
	"ambient":        "ambient",
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

// normalizeEnum lower-cases value and looks it up in table.
func normalizeEnum(table map[string]string, value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	if mapped, ok := table[value]; ok {
		return mapped, true
	}
	return value, false
}

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
	"scope",
	"handler",
	"session_id",
	"intent",
	"flow",
	"step",
	"branch",
	"transition",
	"outcome",
	"verdict",
	"guesses",
	"retries",
	"steps",
	"service",
	"op",
	"results",
	"http_code",
	"duration_ms",
	"messages",
	"kb",
	"count",
	"sessions",
	"username",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"backoff_ms",
	"rate_limited",
	"collapsed",
	"repeats",
	"pending_count",
}
