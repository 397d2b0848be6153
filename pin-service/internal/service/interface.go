package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/pin-service/internal/domain"
)

// PinService issues PINs from named, durable streams.
type PinService interface {
	// Next issues a single PIN from stream id.
	Next(ctx context.Context, id string) (string, error)
	// NextBatch issues count PINs, 1 <= count <= max batch.
	NextBatch(ctx context.Context, id string, count int) (*domain.IssuedPins, error)
	// Validate reports whether pin is well-formed and not obvious.
	Validate(pin string) domain.ValidatePinResponse
	// Status reports the position of stream id without issuing anything.
	Status(ctx context.Context, id string) (*domain.StreamStatus, error)
	// Close releases every open stream.
	Close() error
}
