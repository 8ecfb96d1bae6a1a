package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/roadmapper/internal/cli"
	"github.com/alexanderramin/roadmapper/internal/db"
	"github.com/alexanderramin/roadmapper/internal/intelligence"
	"github.com/alexanderramin/roadmapper/internal/llm"
	"github.com/alexanderramin/roadmapper/internal/metrics"
	"github.com/alexanderramin/roadmapper/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := cli.LoadConfig()
	logger := cli.NewLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	llmCfg := llm.LoadConfig()
	registry, m := metrics.NewRegistry()
	observers := llm.MultiObserver{m}
	if llmCfg.LogCalls {
		observers = append(observers, llm.NewLogObserver(logger))
	}

	app := &cli.App{
		Config: cfg,
		Logger: logger,
	}

	// Optional trace store
	if cfg.TraceDB != "" {
		database, err := db.OpenDB(cfg.TraceDB)
		if err != nil {
			return fmt.Errorf("opening trace database: %w", err)
		}
		defer database.Close()

		store := db.NewTraceStore(database)
		observers = append(observers, db.NewTraceObserver(store, logger))
		app.Traces = store
	}

	// The completion backend is only built for commands that call the
	// model, so show and traces work without one.
	var client *llm.CompletionClient
	closeBackend := func() {}
	defer func() { closeBackend() }()

	app.OpenRoadmaps = func(ctx context.Context) (intelligence.RoadmapService, error) {
		prompts, err := intelligence.LoadPrompts(cfg.PromptsFile)
		if err != nil {
			return nil, err
		}
		backend, closeFn, err := llm.NewBackend(ctx, llmCfg)
		if err != nil {
			return nil, err
		}
		closeBackend = closeFn

		client = llm.NewCompletionClient(backend, llmCfg.RetryPolicy(),
			llm.WithObserver(observers),
			llm.WithLogger(logger),
			llm.WithBackendLabel(llmCfg.Backend, llmCfg.Model),
		)
		return intelligence.NewRoadmapService(client, prompts, logger), nil
	}

	app.Serve = func(ctx context.Context, addr string) error {
		svc, err := app.RoadmapService(ctx)
		if err != nil {
			return err
		}
		srv := server.New(server.Config{
			Service:     svc,
			Health:      client,
			Logger:      logger,
			Metrics:     m,
			Gatherer:    registry,
			MaxUploadMB: cfg.MaxUploadMB,
		})
		return srv.Listen(ctx, addr)
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
