package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/offscreen/internal/core/events/bus"
)

func newBinderFixture(t *testing.T, n int) (bus.EventBus, *Registry, *Binder) {
	t.Helper()
	b := bus.New()
	r := newRegistry(t, n)
	binder, err := Bind(b, r, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = binder.Close() })
	return b, r, binder
}

func TestBinderRegistersInJoinOrder(t *testing.T) {
	b, r, _ := newBinderFixture(t, 3)
	for _, id := range []EntityID{5, 3, 9} {
		require.NoError(t, b.Publish(JoinedEvent("test", newTarget(id))))
	}

	for slot, id := range []EntityID{5, 3, 9} {
		w, ok := r.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, slot, w.Slot())
	}
}

func TestBinderLeaveAndColor(t *testing.T) {
	b, r, _ := newBinderFixture(t, 2)
	require.NoError(t, b.Publish(JoinedEvent("test", newTarget(1))))

	next := RGBA(1, 2, 3, 255)
	require.NoError(t, b.Publish(ColorChangedEvent("theme", 1, next)))
	w, _ := r.Lookup(1)
	assert.Equal(t, next, w.Color())

	require.NoError(t, b.Publish(LeftEvent("test", 1)))
	assert.False(t, r.IsRegistered(1))

	// notifications racing a leave are harmless
	assert.NoError(t, b.Publish(LeftEvent("test", 1)))
	assert.NoError(t, b.Publish(ColorChangedEvent("theme", 1, next)))
}

func TestBinderReportsDuplicateJoin(t *testing.T) {
	b, r, binder := newBinderFixture(t, 2)
	require.NoError(t, b.Publish(JoinedEvent("test", newTarget(1))))
	err := b.Publish(JoinedEvent("test", newTarget(1)))
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.Equal(t, 1, r.Len())
	assert.Empty(t, binder.Parked())
}

func TestBinderParksUntilSlotFrees(t *testing.T) {
	b, r, binder := newBinderFixture(t, 1)
	require.NoError(t, b.Publish(JoinedEvent("test", newTarget(1))))

	err := b.Publish(JoinedEvent("test", newTarget(2)))
	assert.ErrorIs(t, err, ErrPoolExhausted)
	err = b.Publish(JoinedEvent("test", newTarget(3)))
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, []EntityID{2, 3}, binder.Parked())
	assert.False(t, r.IsRegistered(2))

	require.NoError(t, b.Publish(LeftEvent("test", 1)))
	assert.True(t, r.IsRegistered(2))
	assert.Equal(t, []EntityID{3}, binder.Parked())

	// a parked entity that leaves is forgotten
	require.NoError(t, b.Publish(LeftEvent("test", 3)))
	assert.Empty(t, binder.Parked())
	require.NoError(t, b.Publish(LeftEvent("test", 2)))
	assert.Equal(t, 0, r.Len())
}

func TestBinderRejectsUnexpectedPayload(t *testing.T) {
	b, _, _ := newBinderFixture(t, 1)
	for _, typ := range []string{EventEntityJoined, EventEntityLeft, EventColorChanged} {
		err := b.Publish(bus.NewEvent(typ, "test", "garbage"))
		assert.ErrorIs(t, err, ErrUnexpectedPayload, typ)
	}
}

func TestBinderCloseUnsubscribes(t *testing.T) {
	b, r, binder := newBinderFixture(t, 1)
	require.NoError(t, binder.Close())
	require.NoError(t, binder.Close())

	require.NoError(t, b.Publish(JoinedEvent("test", newTarget(1))))
	assert.Equal(t, 0, r.Len())
}
