package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	coreconfig "github.com/jeanzhou31/slackattack/core/config"
	"github.com/jeanzhou31/slackattack/core/logger"
	tghelpers "github.com/jeanzhou31/slackattack/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists update kinds (command, message) that bypass the limit.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now overrides time.Now.
	Now func() time.Time
}

// UpdateKind classifies an update for rate limiting.
func UpdateKind(c tele.Context) string {
	msg := c.Message()
	if msg == nil {
		return "other"
	}
	if strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
		return coreconfig.UpdateCommand
	}
	return coreconfig.UpdateMessage
}

// RateLimitMiddleware enforces a minimum interval between updates from the
// same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
		swept    time.Time
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c)
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			t := now()
			mu.Lock()
			if t.Sub(swept) > time.Minute {
				for id, seen := range lastSeen {
					if t.Sub(seen) > opts.Interval {
						delete(lastSeen, id)
					}
				}
				swept = t
			}
			if last, ok := lastSeen[user.ID]; ok && t.Sub(last) < opts.Interval {
				mu.Unlock()
				logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
					slog.String("status", "skip"),
					slog.String("kind", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			lastSeen[user.ID] = t
			mu.Unlock()
			return next(c)
		}
	}
}
