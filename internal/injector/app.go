package injector

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/offscreen/internal/config"
	"github.com/zeusync/offscreen/internal/core/camera"
	"github.com/zeusync/offscreen/internal/core/events/bus"
	"github.com/zeusync/offscreen/internal/core/indicator"
	"github.com/zeusync/offscreen/internal/core/observability/log"
	"github.com/zeusync/offscreen/internal/core/observability/metrics"
	"github.com/zeusync/offscreen/internal/server"
	"github.com/zeusync/offscreen/internal/sim"
)

// App is the assembled indicator host.
type App struct {
	Config    config.Config
	Logger    *log.Logger
	Metrics   *metrics.Metrics
	Bus       bus.EventBus
	Registry  *indicator.Registry
	Binder    *indicator.Binder
	Cameras   *camera.Holder
	Projector *indicator.Projector
	Feed      *server.Feed
	HTTP      *server.HTTPServer
	World     *sim.World
}

// Run drives the scene and serves the feed until ctx is done or either fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.HTTP.Run(ctx)
	})
	g.Go(func() error {
		return a.World.Run(ctx)
	})

	a.Logger.Info("indicator host running",
		log.String("addr", a.Config.Server.Addr),
		log.Int("pool", a.Registry.Capacity()),
	)
	err := g.Wait()
	_ = a.Logger.Sync()
	return err
}
