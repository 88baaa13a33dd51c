package indicator

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeusync/offscreen/internal/core/geom"
)

// Color is an 8-bit RGBA color. It marshals as "#rrggbbaa".
type Color struct {
	R, G, B, A uint8
}

func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string { return c.Hex() }

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts "#rrggbb" or "#rrggbbaa"; the alpha defaults to opaque.
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", text)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("color %q: %w", text, err)
	}
	*c = Color{R: raw[0], G: raw[1], B: raw[2], A: 0xff}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return nil
}

// SizeBounds are the fixed size limits of one widget.
type SizeBounds struct {
	Min geom.Vec2 `json:"min" yaml:"min"`
	Max geom.Vec2 `json:"max" yaml:"max"`
}

func (b SizeBounds) Validate() error {
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y {
		return fmt.Errorf("%w: min %v max %v", ErrInvalidSizeBounds, b.Min, b.Max)
	}
	if b.Min.X < 0 || b.Min.Y < 0 {
		return fmt.Errorf("%w: negative min %v", ErrInvalidSizeBounds, b.Min)
	}
	return nil
}

// Widget is one pre-allocated indicator. The registry assigns it to an entity,
// the projector writes its placement every tick and a renderer reads it back,
// either during the tick or through Registry.Snapshot.
type Widget struct {
	slot   int
	label  string
	size   SizeBounds
	bounds geom.Rect
	color  Color
	active bool
}

func newWidget(slot int, size SizeBounds) *Widget {
	return &Widget{
		slot:   slot,
		size:   size,
		bounds: geom.Rect{Size: size.Max},
	}
}

func (w *Widget) Slot() int              { return w.slot }
func (w *Widget) Label() string          { return w.label }
func (w *Widget) MinSize() geom.Vec2     { return w.size.Min }
func (w *Widget) MaxSize() geom.Vec2     { return w.size.Max }
func (w *Widget) CurrentSize() geom.Vec2 { return w.bounds.Size }
func (w *Widget) Bounds() geom.Rect      { return w.bounds }
func (w *Widget) Color() Color           { return w.color }
func (w *Widget) Active() bool           { return w.active }

func (w *Widget) assign(id EntityID, c Color) {
	w.label = fmt.Sprintf("entity-%d-indicator", id)
	w.color = c
	w.active = false
	w.bounds = geom.Rect{Size: w.size.Max}
}

func (w *Widget) release() {
	w.label = ""
	w.active = false
}

func (w *Widget) place(bounds geom.Rect) {
	w.bounds = bounds
	w.active = true
}

func (w *Widget) hide() {
	w.active = false
}

// WidgetState is a copy of an assigned widget taken for readers outside the tick.
type WidgetState struct {
	Slot   int       `json:"slot"`
	Entity EntityID  `json:"entity"`
	Label  string    `json:"label"`
	Active bool      `json:"active"`
	Bounds geom.Rect `json:"bounds"`
	Color  Color     `json:"color"`
}

// Frame is the registry state after a projection pass.
type Frame struct {
	Seq        uint64        `json:"seq"`
	Viewport   geom.Vec2     `json:"viewport"`
	Indicators []WidgetState `json:"indicators"`
}

// Active returns only the widgets currently shown.
func (f Frame) Active() []WidgetState {
	out := make([]WidgetState, 0, len(f.Indicators))
	for _, s := range f.Indicators {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}
