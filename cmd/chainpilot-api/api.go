// Package main provides the ChainPilot API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/chainpilot/chainpilot/pkg/backend"
	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/cmd"
	"github.com/chainpilot/chainpilot/pkg/compiler"
	"github.com/chainpilot/chainpilot/pkg/config"
	"github.com/chainpilot/chainpilot/pkg/eventbus"
	"github.com/chainpilot/chainpilot/pkg/identity"
	"github.com/chainpilot/chainpilot/pkg/notify"
	"github.com/chainpilot/chainpilot/pkg/orchestrator"
	"github.com/chainpilot/chainpilot/pkg/planner"
	"github.com/chainpilot/chainpilot/pkg/sanitizer"
	"github.com/chainpilot/chainpilot/pkg/sessions"
	"github.com/chainpilot/chainpilot/pkg/tracker"
	"github.com/chainpilot/chainpilot/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	cfg      config.ServiceConfig
	logger   *slog.Logger
	backend  backend.Client
	plannerC planner.Planner
	identity identity.Resolver
	sessions sessions.Store
	notifier notify.Notifier
	eventBus eventbus.EventBus
	validate *validator.Validate
}

func NewAPI(
	cfg config.ServiceConfig,
	logger *slog.Logger,
	backendClient backend.Client,
	plannerClient planner.Planner,
	resolver identity.Resolver,
	store sessions.Store,
	notifier notify.Notifier,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		cfg:      cfg,
		logger:   logger,
		backend:  backendClient,
		plannerC: plannerClient,
		identity: resolver,
		sessions: store,
		notifier: notifier,
		eventBus: eventBus,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	catalog := blocks.NewCatalog()

	executionTracker := tracker.New(a.backend, a.notifier, a.eventBus, a.logger, tracker.Config{
		PollInterval:          a.cfg.TrackerPoll(),
		ScheduledPollInterval: a.cfg.TrackerScheduledPoll(),
		SigningBaseURL:        a.cfg.Tracker.SigningBaseURL,
	})

	service := orchestrator.NewService(orchestrator.Deps{
		Planner:   a.plannerC,
		Context:   planner.NewContextProvider(a.cfg.Context.BaseURL, a.cfg.Context.CallerID, a.logger),
		Identity:  a.identity,
		Backend:   a.backend,
		Catalog:   catalog,
		Sanitizer: sanitizer.New(catalog, a.logger),
		Compiler:  compiler.New(catalog, a.logger),
		Sessions:  a.sessions,
		Tracker:   executionTracker,
		Notifier:  a.notifier,
		Bus:       a.eventBus,
	}, a.logger)

	handlers := web.NewAPIHandlers(service, a.backend, catalog, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ChainPilot API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	if err := cmd.RegisterLifecycleAudit(a.eventBus, a.logger); err != nil {
		return err
	}

	if err := a.eventBus.Subscribe(context.Background()); err != nil {
		return err
	}

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
