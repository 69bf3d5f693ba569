package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_FIFO(t *testing.T) {
	f := newFeed()
	require.True(t, f.publish(Event{Seq: 1, Kind: EventAdded}))
	require.True(t, f.publish(Event{Seq: 2, Kind: EventToggled}))
	assert.Equal(t, 2, f.Len())

	ev, ok := f.TryNext()
	require.True(t, ok)
	assert.Equal(t, int64(1), ev.Seq)

	ev, ok = f.TryNext()
	require.True(t, ok)
	assert.Equal(t, int64(2), ev.Seq)

	_, ok = f.TryNext()
	assert.False(t, ok)
}

func TestFeed_SignalCoalesces(t *testing.T) {
	f := newFeed()
	f.publish(Event{Seq: 1})
	f.publish(Event{Seq: 2})
	f.publish(Event{Seq: 3})

	select {
	case <-f.Wait():
	default:
		t.Fatal("expected a pending signal")
	}

	select {
	case <-f.Wait():
		t.Fatal("signals should coalesce into one")
	default:
	}

	assert.Len(t, f.Drain(), 3)
	assert.Equal(t, 0, f.Len())
}

func TestFeed_Close(t *testing.T) {
	f := newFeed()
	f.publish(Event{Seq: 1})
	f.Close()
	f.Close() // idempotent

	assert.True(t, f.Closed())
	assert.False(t, f.publish(Event{Seq: 2}), "closed feed rejects events")

	// Queued events stay readable
	ev, ok := f.TryNext()
	require.True(t, ok)
	assert.Equal(t, int64(1), ev.Seq)

	_, open := <-f.Wait()
	assert.False(t, open)
}
