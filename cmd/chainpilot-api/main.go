package main

import (
	"context"
	"os"
	"time"

	"github.com/chainpilot/chainpilot/pkg/backend"
	"github.com/chainpilot/chainpilot/pkg/cmd"
	"github.com/chainpilot/chainpilot/pkg/config"
	"github.com/chainpilot/chainpilot/pkg/log"
	"github.com/chainpilot/chainpilot/pkg/otelhelper"
	"github.com/chainpilot/chainpilot/pkg/planner"
	cli "github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:                  "chainpilot-api",
		Usage:                 "Turn prompts into running automations",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the service configuration file",
				Value:   "chainpilot.yaml",
				Sources: cli.EnvVars("CHAINPILOT_CONFIG"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	err := root.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	cfg, err := config.LoadOrDefault(command.String("config"))
	if err != nil {
		return err
	}

	if port := command.Int("port"); port != 0 {
		cfg.Port = port
	}

	if level := command.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log.Setup(cfg.LogLevel)

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing ChainPilot API")

	if cfg.Tracing.Enabled {
		serviceName := cfg.Tracing.ServiceName
		if serviceName == "" {
			serviceName = "chainpilot-api"
		}

		if _, err := otelhelper.NewTracer(ctx, serviceName); err != nil {
			logger.WarnContext(ctx, "Failed to initialize tracer", "error", err)
		}
	}

	backendClient, err := backend.NewHTTPClient(backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIKey:     cfg.Backend.APIKey,
		Timeout:    cfg.BackendTimeout(),
		MaxRetries: cfg.Backend.MaxRetries,
	}, logger)
	if err != nil {
		return err
	}

	plannerClient, err := planner.NewHTTPPlanner(planner.Config{
		BaseURL:       cfg.Planner.BaseURL,
		CallerID:      cfg.Planner.CallerID,
		SigningSecret: cfg.Planner.SigningSecret,
		Model:         cfg.Planner.Model,
		Timeout:       30 * time.Second,
	}, logger)
	if err != nil {
		return err
	}

	store := cmd.NewSessionStore(cfg.Sessions.URL, cfg.SessionTTL())
	defer func() {
		if err := store.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close session store", "error", err)
		}
	}()

	eventBus := cmd.NewEventBus(cfg.EventBus.Provider, cfg.EventBus.Brokers, logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	api := NewAPI(
		cfg,
		logger,
		backendClient,
		plannerClient,
		cmd.NewIdentityResolver(cfg.Identity, logger),
		store,
		cmd.NewNotifier(cfg.Notifier, logger),
		eventBus,
	)

	if err := api.Start(cfg.Port); err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)
	}

	return nil
}
