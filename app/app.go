package app

import (
	"context"

	"log/slog"

	"github.com/robopoint/salesops-manager/config"
	"github.com/robopoint/salesops-manager/internal/analytics"
	httpapi "github.com/robopoint/salesops-manager/internal/api/http"
	"github.com/robopoint/salesops-manager/internal/store"
)

// App is the main application
type App struct {
	hs   *httpapi.Server
	db   *store.MYSQLStore
	c    *config.Config
	done chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting salesops manager")

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	svc := analytics.New(a.db)

	a.hs = httpapi.New(&a.c.HTTP)
	if err = a.hs.Start(ctx, svc, a.db); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown",
				slog.String("err", err.Error()),
			)
		}
	}
	a.db.Close()
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
