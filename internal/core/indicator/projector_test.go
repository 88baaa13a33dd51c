package indicator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/observability/metrics"
)

const minSizeDistance = 3000

func TestPlaceRightEdgeScenario(t *testing.T) {
	p := Place(geom.Vec3{X: 2000, Y: 540, Z: 5}, hd, defaultSize, minSizeDistance)
	require.False(t, p.OnScreen)

	// distance 1040 from (960, 540): lerp(80, 20, 1040/3000)
	want := 80 - 60*(1040.0/3000.0)
	assert.InDelta(t, want, p.Bounds.Size.X, 1e-9)
	assert.InDelta(t, want, p.Bounds.Size.Y, 1e-9)
	assert.InDelta(t, 1920-want/2, p.Bounds.Center.X, 1e-9)
	assert.InDelta(t, 540, p.Bounds.Center.Y, 1e-9)
}

func TestPlaceOnScreenIncludesEdges(t *testing.T) {
	for _, pt := range []geom.Vec3{
		{X: 0, Y: 0, Z: 1},
		{X: 1920, Y: 1080, Z: 1},
		{X: 960, Y: 540, Z: 1},
		{X: 0, Y: 1080, Z: -1},
	} {
		assert.True(t, Place(pt, hd, defaultSize, minSizeDistance).OnScreen, "%v", pt)
	}
	assert.False(t, Place(geom.Vec3{X: -0.001, Y: 10, Z: 1}, hd, defaultSize, minSizeDistance).OnScreen)
}

func TestPlaceSizeIsMonotonic(t *testing.T) {
	prev := defaultSize.Max
	for d := 980.0; d <= 4000; d += 20 {
		p := Place(geom.Vec3{X: 960 + d, Y: 540, Z: 1}, hd, defaultSize, minSizeDistance)
		require.False(t, p.OnScreen)
		assert.LessOrEqual(t, p.Bounds.Size.X, prev.X)
		assert.LessOrEqual(t, p.Bounds.Size.Y, prev.Y)
		assert.GreaterOrEqual(t, p.Bounds.Size.X, defaultSize.Min.X)
		if d >= minSizeDistance {
			assert.Equal(t, defaultSize.Min, p.Bounds.Size)
		}
		prev = p.Bounds.Size
	}
}

func TestPlaceSizeIsPerComponent(t *testing.T) {
	size := SizeBounds{Min: geom.Vec2{X: 10, Y: 40}, Max: geom.Vec2{X: 50, Y: 40}}
	p := Place(geom.Vec3{X: 960, Y: 540 + 1500, Z: 1}, hd, size, minSizeDistance)
	assert.InDelta(t, 30, p.Bounds.Size.X, 1e-9)
	assert.InDelta(t, 40, p.Bounds.Size.Y, 1e-9)
}

func TestPlaceStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		pt := geom.Vec3{
			X: (rng.Float64() - 0.5) * 20000,
			Y: (rng.Float64() - 0.5) * 20000,
			Z: (rng.Float64() - 0.5) * 100,
		}
		p := Place(pt, hd, defaultSize, minSizeDistance)
		if p.OnScreen {
			continue
		}
		half := p.Bounds.Size.Half()
		assert.GreaterOrEqual(t, p.Bounds.Center.X, half.X)
		assert.LessOrEqual(t, p.Bounds.Center.X, hd.X-half.X)
		assert.GreaterOrEqual(t, p.Bounds.Center.Y, half.Y)
		assert.LessOrEqual(t, p.Bounds.Center.Y, hd.Y-half.Y)
	}
}

func TestPlaceBehindCameraIsMirrored(t *testing.T) {
	for _, pt := range []geom.Vec3{
		{X: 2500, Y: 300, Z: -4},
		{X: -700, Y: 2000, Z: -0.5},
		{X: 100, Y: -50, Z: -12},
	} {
		behind := Place(pt, hd, defaultSize, minSizeDistance)
		mirrored := Place(pt.Neg(), hd, defaultSize, minSizeDistance)
		assert.Equal(t, mirrored, behind, "%v", pt)
	}

	// the on-screen test itself uses the raw projection
	assert.True(t, Place(geom.Vec3{X: 500, Y: 300, Z: -4}, hd, defaultSize, minSizeDistance).OnScreen)
}

func TestPlaceDegradesGracefully(t *testing.T) {
	cases := map[string]struct {
		pt       geom.Vec3
		viewport geom.Vec2
	}{
		"nan":           {geom.Vec3{X: math.NaN(), Y: math.NaN(), Z: 1}, hd},
		"inf":           {geom.Vec3{X: math.Inf(1), Y: 10, Z: 1}, hd},
		"zero viewport": {geom.Vec3{X: 5000, Y: 10, Z: 1}, geom.Vec2{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := Place(tc.pt, tc.viewport, defaultSize, minSizeDistance)
			assert.False(t, p.OnScreen)
			assert.True(t, p.Bounds.Center.Finite())
			assert.True(t, p.Bounds.Size.Finite())
			assert.Equal(t, defaultSize.Min, p.Bounds.Size)
		})
	}
}

func TestPlaceWithoutDistanceUsesMinSize(t *testing.T) {
	p := Place(geom.Vec3{X: 2000, Y: 540, Z: 1}, hd, defaultSize, 0)
	assert.Equal(t, defaultSize.Min, p.Bounds.Size)
}

func newProjectorFixture(t *testing.T, n int, height float64) (*Registry, *Projector, *fakeCamera, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	r, err := NewRegistry(uniformPool(n), nil, m)
	require.NoError(t, err)
	cam := screenCamera(hd)
	p := NewProjector(r, cameraSource{cam: cam}, FixedHeight(height), minSizeDistance, nil, m)
	return r, p, cam, m
}

func TestTickShowsOnlyOffScreenEntities(t *testing.T) {
	r, p, _, m := newProjectorFixture(t, 3, 5)

	inside := newTarget(1)
	inside.pos = geom.Vec3{X: 500, Y: 123, Z: 400}
	outside := newTarget(2)
	outside.pos = geom.Vec3{X: 2000, Y: -50, Z: 540}
	for _, tg := range []*fakeTarget{inside, outside} {
		_, err := r.Register(tg)
		require.NoError(t, err)
	}

	require.NoError(t, p.Tick())

	wIn, _ := r.Lookup(1)
	wOut, _ := r.Lookup(2)
	assert.True(t, inside.visible)
	assert.False(t, wIn.Active())
	assert.False(t, outside.visible)
	assert.True(t, wOut.Active())
	assert.InDelta(t, 1920-wOut.CurrentSize().X/2, wOut.Bounds().Center.X, 1e-9)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveIndicators))

	frame := r.Snapshot()
	assert.Equal(t, uint64(1), frame.Seq)
	assert.Equal(t, hd, frame.Viewport)
	assert.Len(t, frame.Active(), 1)
}

func TestTickProjectsAtReferenceHeight(t *testing.T) {
	r, p, cam, _ := newProjectorFixture(t, 2, 5)
	a := newTarget(1)
	a.pos = geom.Vec3{X: 1, Y: 100, Z: 2}
	b := newTarget(2)
	b.pos = geom.Vec3{X: 3, Y: -7, Z: 4}
	_, _ = r.Register(a)
	_, _ = r.Register(b)

	require.NoError(t, p.Tick())
	assert.Equal(t, []geom.Vec3{{X: 1, Y: 5, Z: 2}, {X: 3, Y: 5, Z: 4}}, cam.seen)
}

func TestTickTransitionsBetweenStates(t *testing.T) {
	r, p, _, _ := newProjectorFixture(t, 1, 5)
	target := newTarget(1)
	target.pos = geom.Vec3{X: -300, Z: 540}
	w, err := r.Register(target)
	require.NoError(t, err)
	assert.False(t, w.Active())

	require.NoError(t, p.Tick())
	assert.True(t, w.Active())

	target.pos = geom.Vec3{X: 300, Z: 540}
	require.NoError(t, p.Tick())
	assert.False(t, w.Active())
	assert.True(t, target.visible)

	target.pos = geom.Vec3{X: 300, Z: 5000}
	require.NoError(t, p.Tick())
	assert.True(t, w.Active())
	assert.False(t, target.visible)
}

func TestTickBehindCamera(t *testing.T) {
	r, p, _, _ := newProjectorFixture(t, 1, -5)
	target := newTarget(1)
	target.pos = geom.Vec3{X: 2500, Z: 300}
	w, err := r.Register(target)
	require.NoError(t, err)

	require.NoError(t, p.Tick())
	want := Place(geom.Vec3{X: -2500, Y: -300, Z: 5}, hd, defaultSize, minSizeDistance)
	assert.Equal(t, want.Bounds, w.Bounds())
	// mirrored into the bottom-left corner region
	assert.InDelta(t, w.CurrentSize().X/2, w.Bounds().Center.X, 1e-9)
}

func TestTickWithoutCameraIsSkipped(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r, err := NewRegistry(uniformPool(1), nil, m)
	require.NoError(t, err)
	target := newTarget(1)
	target.pos = geom.Vec3{X: -300, Z: 540}
	w, err := r.Register(target)
	require.NoError(t, err)

	p := NewProjector(r, cameraSource{}, FixedHeight(5), minSizeDistance, nil, m)
	assert.ErrorIs(t, p.Tick(), ErrMissingCollaborator)
	assert.ErrorIs(t, NewProjector(r, nil, FixedHeight(5), minSizeDistance, nil, m).Tick(), ErrMissingCollaborator)
	assert.ErrorIs(t, NewProjector(r, cameraSource{cam: screenCamera(hd)}, nil, minSizeDistance, nil, m).Tick(), ErrMissingCollaborator)

	assert.False(t, w.Active())
	assert.Equal(t, 0, target.tested)
	assert.Equal(t, uint64(0), r.Snapshot().Seq)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SkippedTicks))

	// the camera comes back: the next tick runs normally
	p.cameras = cameraSource{cam: screenCamera(hd)}
	require.NoError(t, p.Tick())
	assert.True(t, w.Active())
}

func TestTickWithEmptyRegistry(t *testing.T) {
	_, p, cam, m := newProjectorFixture(t, 2, 5)
	require.NoError(t, p.Tick())
	assert.Empty(t, cam.seen)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveIndicators))
}
