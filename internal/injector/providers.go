package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zeusync/offscreen/internal/config"
	"github.com/zeusync/offscreen/internal/core/camera"
	"github.com/zeusync/offscreen/internal/core/events/bus"
	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/indicator"
	"github.com/zeusync/offscreen/internal/core/observability/log"
	"github.com/zeusync/offscreen/internal/core/observability/metrics"
	"github.com/zeusync/offscreen/internal/server"
	"github.com/zeusync/offscreen/internal/sim"
)

// ProviderSet builds the indicator host from a validated configuration.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvidePrometheusRegistry,
	ProvideMetrics,
	ProvideBus,
	ProvideRegistry,
	ProvideBinder,
	ProvideCameras,
	sim.NewRoster,
	ProvideProjector,
	ProvideFeed,
	ProvideHTTPServer,
	ProvideWorld,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	return log.New(level)
}

// ProvidePrometheusRegistry returns a private registry carrying the Go
// runtime and process collectors.
func ProvidePrometheusRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

// ProvideBus returns the event bus with metrics observing its deliveries.
func ProvideBus(m *metrics.Metrics) bus.EventBus {
	b := bus.New()
	b.AddObserver(m)
	return b
}

func ProvideRegistry(cfg config.Config, logger log.Log, m *metrics.Metrics) (*indicator.Registry, error) {
	return indicator.NewRegistry(cfg.Indicators.Pool(), logger, m)
}

func ProvideBinder(b bus.EventBus, registry *indicator.Registry, logger log.Log) (*indicator.Binder, func(), error) {
	binder, err := indicator.Bind(b, registry, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := binder.Close(); err != nil {
			logger.Warn("binder close", log.Error(err))
		}
	}
	return binder, cleanup, nil
}

// ProvideCameras aims the demo camera at the configured target.
func ProvideCameras(cfg config.Config) *camera.Holder {
	c := cfg.Camera
	cam := camera.NewPerspective(c.Position, 0, 0, c.FovY, geom.Vec2{X: c.Width, Y: c.Height})
	cam.LookAt(c.LookAt)
	return camera.NewHolder(cam)
}

func ProvideProjector(
	cfg config.Config,
	registry *indicator.Registry,
	cameras *camera.Holder,
	roster *sim.Roster,
	logger log.Log,
	m *metrics.Metrics,
) *indicator.Projector {
	return indicator.NewProjector(registry, cameras, roster, cfg.Indicators.MinSizeDistance, logger, m)
}

func ProvideFeed(cfg config.Config, logger log.Log, m *metrics.Metrics) *server.Feed {
	return server.NewFeed(cfg.Server, logger, m)
}

func ProvideHTTPServer(cfg config.Config, feed *server.Feed, reg *prometheus.Registry, logger log.Log) *server.HTTPServer {
	return server.NewHTTPServer(cfg.Server, feed, reg, logger)
}

func ProvideWorld(
	cfg config.Config,
	b bus.EventBus,
	roster *sim.Roster,
	projector *indicator.Projector,
	registry *indicator.Registry,
	feed *server.Feed,
	logger log.Log,
) *sim.World {
	return sim.NewWorld(cfg.Sim, b, roster, projector, registry, feed, logger)
}
