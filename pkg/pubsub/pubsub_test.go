package pubsub

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	evt, err := NewEvent(EventStreamRotated, "door", StreamRotatedPayload{
		StreamID:   "door",
		Generation: 2,
		SpaceSize:  10000,
	})
	require.NoError(t, err)

	_, err = ulid.Parse(evt.ID)
	assert.NoError(t, err)
	assert.Equal(t, EventStreamRotated, evt.Type)
	assert.Equal(t, "door", evt.StreamID)

	var got StreamRotatedPayload
	require.NoError(t, evt.UnmarshalPayload(&got))
	assert.Equal(t, uint64(2), got.Generation)
	assert.Equal(t, uint64(10000), got.SpaceSize)

	other, err := NewEvent(EventStreamRotated, "door", nil)
	require.NoError(t, err)
	assert.NotEqual(t, evt.ID, other.ID)
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	p, err := NewPublisher(Config{Driver: "none"})
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), StreamEventsChannel("door"), &Event{}))
	assert.NoError(t, p.Close())

	_, err = NewPublisher(Config{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestStreamEventsChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "pin:stream:door:events", StreamEventsChannel("door"))
}
