package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jeanzhou31/slackattack/core/agent"
	"github.com/jeanzhou31/slackattack/core/bootstrap"
	coredatabase "github.com/jeanzhou31/slackattack/core/database"
	"github.com/jeanzhou31/slackattack/core/dialog"
	"github.com/jeanzhou31/slackattack/core/integrations/gmaps"
	"github.com/jeanzhou31/slackattack/core/integrations/yelp"
	"github.com/jeanzhou31/slackattack/core/logger"
	"github.com/jeanzhou31/slackattack/core/opsserver"
	"github.com/jeanzhou31/slackattack/core/telegram"
	"github.com/jeanzhou31/slackattack/core/telegram/commands"
	"github.com/jeanzhou31/slackattack/core/telegram/router"
	tgsender "github.com/jeanzhou31/slackattack/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const opsShutdownTimeout = 5 * time.Second

// Replies of the built-in commands.
const (
	CancelDone  = "Okay, I stopped our conversation."
	CancelIdle  = "There's nothing to cancel. Say hi to start!"
	AdminOnly   = "Sorry, that command is only for my admin."
	RateLimited = "Whoa, slow down a little!"
)

// App owns the agent and everything running next to the Telegram loop.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	agent    *agent.Agent
	recorder *coredatabase.Recorder
	janitor  *dialog.Janitor
	ops      *opsserver.Server

	me         atomic.Pointer[tele.User]
	dispatcher atomic.Pointer[tgsender.Dispatcher]
}

// Bootstrap initializes logging and the audit store, then builds the
// lookup clients and the app.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}
	food, err := yelp.New(cfg.Yelp)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	maps, err := gmaps.New(cfg.GMaps)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	app, err := NewApp(cfg, infra, Deps{Food: food, Directions: maps, Name: cfg.Bot.Name})
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return app, nil
}

// NewApp assembles the app from already built collaborators. infra may be
// nil or carry no database.
func NewApp(cfg *Config, infra *bootstrap.Result, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	a := &App{cfg: cfg, infra: infra}

	var opts []dialog.Option
	if infra != nil && infra.DB != nil {
		a.recorder = coredatabase.NewRecorder(infra.DB)
		opts = append(opts, dialog.WithRecorder(a.recorder))
	}
	ag, err := NewAgent(deps, opts...)
	if err != nil {
		return nil, err
	}
	a.agent = ag
	a.janitor = dialog.NewJanitor(ag.Engine(), cfg.Session.TTL, cfg.Session.Sweep)

	opsOpts := opsserver.Options{Listen: cfg.Ops.Listen, Sessions: a.sessionStats}
	if a.recorder != nil {
		opsOpts.Audit = a.recorder
	}
	a.ops = opsserver.New(opsOpts)
	return a, nil
}

// Agent exposes the conversational agent.
func (a *App) Agent() *agent.Agent { return a.agent }

// Registry builds the slash commands.
func (a *App) Registry() (*telegram.Registry, error) {
	help := commands.Reply(HelpLines(a.cfg.Bot.Name)...)
	reg := telegram.NewRegistry()
	for _, c := range []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: help, Description: "Say hello", Hidden: true}},
		{"/help", commands.Command{Handler: help, Description: "What I can do"}},
		{"/cancel", commands.Command{
			Handler:     commands.Cancel(a.agent.Engine(), CancelDone, CancelIdle),
			Description: "Stop the current conversation",
			Aliases:     []string{"stop"},
		}},
		{"/stats", commands.Command{
			Handler:     commands.StatsHandler(a.stats),
			Description: "Live session statistics",
			AdminOnly:   true,
		}},
	} {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// TelegramRunOptions wires the registry, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (telegram.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return telegram.RunOptions{}, err
	}
	cmdOpts := router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: commands.Reply(AdminOnly),
	}
	routes := router.CommandRoutes(reg, cmdOpts)
	routes = append(routes, router.MessageRoutes(reg, router.MessageOptions{
		Agent:    a.agent,
		Me:       a.me.Load,
		Commands: cmdOpts,
	})...)

	return telegram.RunOptions{
		Config:            &a.cfg.Config,
		Registry:          reg,
		DispatcherOptions: tgsender.Options{Workers: 4, MaxRetries: 3},
		Middlewares:       telegram.DefaultMiddlewares(&a.cfg.Config, commands.Reply(RateLimited)),
		Routes:            routes,
		OnStart:           a.start,
		OnStop:            a.stop,
	}, nil
}

func (a *App) start(ctx context.Context, rt telegram.Runtime) error {
	if rt.Bot != nil && rt.Bot.Me != nil {
		a.me.Store(rt.Bot.Me)
		logger.Info(ctx, "app", "identity",
			slog.String("status", "ok"),
			slog.String("username", rt.Bot.Me.Username),
		)
	}
	a.dispatcher.Store(rt.Dispatcher)
	if err := a.ops.Start(ctx); err != nil {
		return err
	}
	a.janitor.Start(ctx)
	return nil
}

func (a *App) stop(ctx context.Context, _ telegram.Runtime) error {
	a.janitor.Stop()
	shutdownCtx, cancel := context.WithTimeout(ctx, opsShutdownTimeout)
	defer cancel()
	return a.ops.Shutdown(shutdownCtx)
}

// Close releases the audit store.
func (a *App) Close() error {
	return a.infra.Close()
}

func (a *App) sessionStats() opsserver.SessionStats {
	store := a.agent.Engine().Store()
	return opsserver.SessionStats{Live: store.Len(), ByIntent: store.Intents()}
}

func (a *App) stats() commands.Stats {
	live := a.sessionStats()
	s := commands.Stats{Sessions: live.Live, ByIntent: live.ByIntent}
	if d := a.dispatcher.Load(); d != nil {
		s.Sent = d.SentCount()
		s.Failed = d.ErrorCount()
	}
	return s
}
