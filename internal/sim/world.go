package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zeusync/offscreen/internal/config"
	"github.com/zeusync/offscreen/internal/core/events/bus"
	"github.com/zeusync/offscreen/internal/core/indicator"
	"github.com/zeusync/offscreen/internal/core/observability/log"
)

const eventSource = "sim"

// Projector runs one projection pass.
type Projector interface {
	Tick() error
}

// Snapshotter copies indicator state after a pass.
type Snapshotter interface {
	Snapshot() indicator.Frame
}

// FrameSink receives the indicator frame after every step.
type FrameSink interface {
	Broadcast(frame indicator.Frame)
}

// World is the demo scene: actors orbit the origin, some leave and rejoin,
// and their colors cycle through a palette. Lifecycle and color changes are
// published on the bus; a World never touches the indicator registry directly.
//
// Step and Run must be called from a single goroutine.
type World struct {
	cfg       config.SimConfig
	bus       bus.EventBus
	roster    *Roster
	projector Projector
	snapshots Snapshotter
	sink      FrameSink

	benched    []*Actor
	elapsed    time.Duration
	sinceChurn time.Duration
	sinceColor time.Duration

	logger log.Log
}

func NewWorld(
	cfg config.SimConfig,
	b bus.EventBus,
	roster *Roster,
	projector Projector,
	snapshots Snapshotter,
	sink FrameSink,
	logger log.Log,
) *World {
	if logger == nil {
		logger = log.NewNop()
	}
	return &World{
		cfg:       cfg,
		bus:       b,
		roster:    roster,
		projector: projector,
		snapshots: snapshots,
		sink:      sink,
		logger:    logger.With(log.String("component", "sim")),
	}
}

// Spawn creates the configured actors and announces them in order.
func (w *World) Spawn() error {
	n := w.cfg.Actors
	for i := 0; i < n; i++ {
		radius := w.cfg.OrbitRadius * (0.6 + 0.4*float64(i)/float64(max(n-1, 1)))
		height := float64(i%3) * 2
		phase := 2 * math.Pi * float64(i) / float64(n)
		speed := w.cfg.OrbitSpeed * (1 + 0.15*float64(i%2))
		palette := i % len(w.cfg.Palette)
		a := newActor(indicator.EntityID(i+1), radius, height, phase, speed, palette, w.cfg.Palette[palette])
		if err := w.join(a); err != nil {
			return err
		}
	}
	w.logger.Info("scene spawned", log.Int("actors", n))
	return nil
}

// Despawn announces every active actor as gone.
func (w *World) Despawn() error {
	var all error
	for _, a := range w.roster.Actors() {
		all = errors.Join(all, w.leave(a))
	}
	return all
}

// Step advances the scene by dt, runs a projection pass and hands the
// resulting frame to the sink. A pass skipped for a missing camera is not an
// error; the next step retries.
func (w *World) Step(dt time.Duration) error {
	w.elapsed += dt
	seconds := w.elapsed.Seconds()
	for _, a := range w.roster.Actors() {
		a.advance(seconds)
	}

	if w.cfg.ChurnInterval > 0 {
		w.sinceChurn += dt
		if w.sinceChurn >= w.cfg.ChurnInterval {
			w.sinceChurn = 0
			if err := w.churn(); err != nil {
				return err
			}
		}
	}
	if w.cfg.ColorCycleInterval > 0 {
		w.sinceColor += dt
		if w.sinceColor >= w.cfg.ColorCycleInterval {
			w.sinceColor = 0
			if err := w.cycleColors(); err != nil {
				return err
			}
		}
	}

	if err := w.projector.Tick(); err != nil {
		if errors.Is(err, indicator.ErrMissingCollaborator) {
			w.logger.Debug("projection skipped this step")
			return nil
		}
		return fmt.Errorf("projection: %w", err)
	}
	if w.sink != nil && w.snapshots != nil {
		w.sink.Broadcast(w.snapshots.Snapshot())
	}
	return nil
}

// Run spawns the scene and steps it every tick interval until ctx is done.
func (w *World) Run(ctx context.Context) error {
	if err := w.Spawn(); err != nil {
		return err
	}
	ticker := time.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			if err := w.Despawn(); err != nil {
				w.logger.Warn("despawn", log.Error(err))
			}
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := w.Step(dt); err != nil {
				return err
			}
		}
	}
}

// Elapsed returns the simulated time.
func (w *World) Elapsed() time.Duration {
	return w.elapsed
}

// churn sends the longest-present actor away and brings back the one that
// has been benched the longest.
func (w *World) churn() error {
	actors := w.roster.Actors()
	var leaving *Actor
	if len(actors) > 0 {
		leaving = actors[0]
	}
	if len(w.benched) > 0 {
		back := w.benched[0]
		w.benched = w.benched[1:]
		if err := w.join(back); err != nil {
			return err
		}
	}
	if leaving != nil {
		if err := w.leave(leaving); err != nil {
			return err
		}
		w.benched = append(w.benched, leaving)
	}
	return nil
}

func (w *World) cycleColors() error {
	var all error
	for _, a := range w.roster.Actors() {
		c := a.nextColor(w.cfg.Palette)
		all = errors.Join(all, w.bus.Publish(indicator.ColorChangedEvent(eventSource, a.ID(), c)))
	}
	return all
}

func (w *World) join(a *Actor) error {
	w.roster.Add(a)
	err := w.bus.Publish(indicator.JoinedEvent(eventSource, a))
	if errors.Is(err, indicator.ErrPoolExhausted) {
		w.logger.Info("actor joined without an indicator", log.Uint64("entity", uint64(a.ID())))
		return nil
	}
	return err
}

func (w *World) leave(a *Actor) error {
	w.roster.Remove(a.ID())
	return w.bus.Publish(indicator.LeftEvent(eventSource, a.ID()))
}
