package pubsub

import "fmt"

// Channel naming for PIN stream events.
const (
	ChannelStreamEvents = "pin:stream:%s:events"
)

// Event types.
const (
	EventStreamRotated = "pin.stream.rotated"
)

// StreamEventsChannel returns the channel name for a stream's events.
func StreamEventsChannel(streamID string) string {
	return fmt.Sprintf(ChannelStreamEvents, streamID)
}

// StreamRotatedPayload is published after a stream exhausted its space and
// switched to a fresh key.
type StreamRotatedPayload struct {
	StreamID   string `json:"stream_id"`
	Generation uint64 `json:"generation"`
	SpaceSize  uint64 `json:"space_size"`
}
