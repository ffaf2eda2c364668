package logger

import (
	"fmt"
	"strings"
	"time"
)

// Took is the time since start, rounded to the millisecond.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// TookMS is Took as whole milliseconds, for *_ms attributes.
func TookMS(start time.Time) int64 {
	return Took(start).Milliseconds()
}

// RoundMS rounds d to the millisecond; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// SummarizeStrings joins at most limit values and notes how many were
// left out, e.g. "a, b (+3 more)". truncated reports whether any were.
func SummarizeStrings(values []string, limit int) (summary string, truncated bool) {
	if len(values) == 0 {
		return "", false
	}
	if limit <= 0 {
		return fmt.Sprintf("(+%d more)", len(values)), true
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(values[:limit], ", "), len(values)-limit), true
}
