// Package cli implements the roadmapper command line.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/roadmapper/internal/db"
	"github.com/alexanderramin/roadmapper/internal/intelligence"
)

// TraceReader is the read side of the completion trace store.
// *db.TraceStore satisfies it.
type TraceReader interface {
	Recent(ctx context.Context, limit int) ([]db.CallTrace, error)
	Summary(ctx context.Context) (db.TraceSummary, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// App holds the services used by CLI commands.
type App struct {
	// Roadmaps is used as-is when set. Otherwise OpenRoadmaps builds it on
	// the first command that needs the model.
	Roadmaps     intelligence.RoadmapService
	OpenRoadmaps func(ctx context.Context) (intelligence.RoadmapService, error)

	// Traces is nil when tracing is disabled.
	Traces TraceReader

	// Serve runs the HTTP server until ctx is cancelled.
	Serve func(ctx context.Context, addr string) error

	Config Config
	Logger *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Forms and
	// spinners are only shown when it returns true.
	IsInteractive func() bool

	// Now is overridable for tests.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// RoadmapService returns Roadmaps, opening it first if needed. Commands
// that never call the model do not go through here, so a misconfigured
// backend does not break them.
func (a *App) RoadmapService(ctx context.Context) (intelligence.RoadmapService, error) {
	if a.Roadmaps == nil && a.OpenRoadmaps != nil {
		svc, err := a.OpenRoadmaps(ctx)
		if err != nil {
			return nil, err
		}
		a.Roadmaps = svc
	}
	if a.Roadmaps == nil {
		return nil, errors.New("roadmap service is not configured")
	}
	return a.Roadmaps, nil
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "roadmapper" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "roadmapper",
		Short:         "Generate and refine AI learning roadmaps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newGenerateCmd(app),
		newRefineCmd(app),
		newContinueCmd(app),
		newShowCmd(app),
		newTracesCmd(app),
	)

	return root
}
