package sim

import (
	"math"
	"slices"
	"sync"

	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/indicator"
)

var _ indicator.Target = (*Actor)(nil)

// Actor circles the scene origin on a fixed orbit.
type Actor struct {
	mu      sync.RWMutex
	id      indicator.EntityID
	radius  float64
	height  float64
	phase   float64
	speed   float64
	pos     geom.Vec3
	color   indicator.Color
	palette int
	visible bool
}

func newActor(id indicator.EntityID, radius, height, phase, speed float64, palette int, color indicator.Color) *Actor {
	a := &Actor{
		id:      id,
		radius:  radius,
		height:  height,
		phase:   phase,
		speed:   speed,
		palette: palette,
		color:   color,
	}
	a.advance(0)
	return a
}

func (a *Actor) ID() indicator.EntityID { return a.id }

func (a *Actor) Position() geom.Vec3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pos
}

func (a *Actor) Color() indicator.Color {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.color
}

func (a *Actor) SetVisible(visible bool) {
	a.mu.Lock()
	a.visible = visible
	a.mu.Unlock()
}

// Visible reports the outcome of the last projection pass.
func (a *Actor) Visible() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.visible
}

// advance places the actor on its orbit at elapsed seconds.
func (a *Actor) advance(elapsed float64) {
	angle := a.phase + a.speed*elapsed
	sin, cos := math.Sincos(angle)
	a.mu.Lock()
	a.pos = geom.Vec3{X: a.radius * cos, Y: a.height, Z: a.radius * sin}
	a.mu.Unlock()
}

func (a *Actor) nextColor(palette []indicator.Color) indicator.Color {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.palette = (a.palette + 1) % len(palette)
	a.color = palette[a.palette]
	return a.color
}

// Roster is the ordered list of actors currently in the scene. It doubles as
// the indicator anchor source: the reference height is the mean height of the
// active actors, the point a group camera would focus on.
type Roster struct {
	mu     sync.RWMutex
	actors []*Actor
}

var _ indicator.AnchorSource = (*Roster)(nil)

func NewRoster() *Roster {
	return &Roster{}
}

func (r *Roster) Add(a *Actor) {
	r.mu.Lock()
	r.actors = append(r.actors, a)
	r.mu.Unlock()
}

// Remove drops the actor with id, reporting whether it was present.
func (r *Roster) Remove(id indicator.EntityID) (*Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.actors, func(a *Actor) bool { return a.id == id })
	if i < 0 {
		return nil, false
	}
	a := r.actors[i]
	r.actors = slices.Delete(r.actors, i, i+1)
	return a, true
}

// Actors returns a copy of the active actors in join order.
func (r *Roster) Actors() []*Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.actors)
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}

func (r *Roster) ReferenceHeight() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.actors) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range r.actors {
		sum += a.Position().Y
	}
	return sum / float64(len(r.actors))
}
