// Package app wires the purchase flow onto the Telegram runtime: commands,
// callbacks, message routing, the health endpoint and the session sweeper.
package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "premiumbot/core/config"
	coretelegram "premiumbot/core/telegram"
	"premiumbot/core/telegram/commands"
	"premiumbot/core/telegram/router"
	"premiumbot/internal/health"
	"premiumbot/internal/journal"
	"premiumbot/internal/purchase"
	"premiumbot/internal/qr"
	"premiumbot/internal/session"
	"premiumbot/internal/sweeper"
)

// App aggregates the bot's runtime components.
type App struct {
	cfg      *coreconfig.Config
	store    *session.Store
	svc      *purchase.Service
	journal  *journal.Repo
	db       *sqlx.DB
	health   *health.Server
	sweeper  *sweeper.Sweeper
	registry *coretelegram.Registry
	tr       *botTransport
}

// New assembles the application. db may be nil; the journal and the
// operator reporting commands degrade gracefully without it.
func New(cfg *coreconfig.Config, db *sqlx.DB) *App {
	a := &App{
		cfg:   cfg,
		store: session.NewStore(),
		db:    db,
		tr:    &botTransport{},
	}

	var j purchase.Journal
	if db != nil {
		a.journal = journal.New(db)
		j = a.journal
	}

	renderer := qr.Renderer{
		UPIAddress: cfg.Payment.UPIAddress,
		PayeeName:  cfg.Payment.PayeeName,
	}
	a.svc = purchase.NewService(purchase.Config{
		OperatorID:     cfg.Payment.OperatorID,
		Window:         cfg.Payment.Window(),
		HardCutoff:     cfg.Payment.HardCutoff,
		SupportContact: cfg.Payment.SupportContact,
	}, a.store, renderer, a.tr, j)

	a.health = health.New(cfg.Health.Listen)
	a.sweeper = sweeper.New(a.store, sweeper.Options{
		Interval: cfg.Sweep.Interval(),
		MaxIdle:  cfg.Sweep.MaxIdle(),
	})

	a.registry = coretelegram.NewRegistry()
	a.registerCommands()
	a.registerCallbacks()
	a.registry.SetTextFallback(a.textFallback)

	return a
}

func (a *App) registerCommands() {
	reg := a.registry
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.cmdStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.cmdHelp,
		Description: "How to buy",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     a.cmdStatus,
		Description: "Show your purchase status",
	})
	reg.RegisterCommand("/support", commands.Command{
		Handler:     a.cmdSupport,
		Description: "Contact support",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.cmdCancel,
		Description: "Cancel the current purchase",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:      a.cmdAdmin,
		Description:  "Admin dashboard",
		OperatorOnly: true,
		Hidden:       true,
	})
	reg.RegisterCommand("/pending", commands.Command{
		Handler:      a.cmdPending,
		Description:  "List pending submissions",
		OperatorOnly: true,
		Hidden:       true,
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:      a.cmdStats,
		Description:  "Purchase statistics",
		OperatorOnly: true,
		Hidden:       true,
	})
}

// TelegramRunOptions builds the runtime wiring consumed by core/cmd.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		OperatorID:       a.cfg.Payment.OperatorID,
		OnOperatorReject: a.operatorReject,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.MessageRoutes(a.registry, router.MessageOptions{
		Photo:              a.onPhoto,
		UnexpectedDocument: a.onDocument,
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.tr.Bind(rt.Bot)
			a.health.Start()
			a.sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.sweeper.Stop()
			a.svc.Close()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.health.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}, nil
}
