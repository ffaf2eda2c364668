package router

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/jeanzhou31/slackattack/core/logger"
	tg "github.com/jeanzhou31/slackattack/core/telegram"
	"github.com/jeanzhou31/slackattack/core/telegram/commands"
	"github.com/jeanzhou31/slackattack/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

func (o CommandRouteOptions) wrap(name string, def commands.Command) tele.HandlerFunc {
	h := def.Handler
	if def.AdminOnly {
		h = middleware.AdminOnlyMiddleware(middleware.AdminOptions{
			AdminID:  o.AdminID,
			OnReject: o.OnAdminReject,
		})(h)
	}
	handlerName := normalizeHandlerName(name)
	return func(c tele.Context) error {
		return handleWithSummary(c, handlerName, time.Now(), func() error { return h(c) })
	}
}

// CommandRoutes binds every registered command to its handler.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	names := make([]string, 0, len(reg.Commands()))
	for name := range reg.Commands() {
		names = append(names, name)
	}
	sort.Strings(names)

	routes := make([]tg.Route, 0, len(names))
	for _, name := range names {
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  opts.wrap(name, reg.Commands()[name]),
		})
	}

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "wire.complete",
		slog.String("status", "ok"),
		slog.Int("commands", len(routes)),
	)
	return routes
}
