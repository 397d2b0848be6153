package state

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
	"github.com/weiawesome/wes-io-live/pkg/storage"
)

const contentType = "application/msgpack"

// BlobStore keeps one encoded record per stream in a storage backend
// (local filesystem or S3).
type BlobStore struct {
	storage storage.Storage
	prefix  string
	codec   *Codec
}

func NewBlobStore(st storage.Storage, prefix string, codec *Codec) *BlobStore {
	return &BlobStore{
		storage: st,
		prefix:  prefix,
		codec:   codec,
	}
}

func (s *BlobStore) key(id string) string {
	return path.Join(s.prefix, id+".msgpack")
}

func (s *BlobStore) Load(ctx context.Context, id string) (pin.State, bool, error) {
	data, err := s.storage.Read(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return pin.State{}, false, nil
		}
		return pin.State{}, false, fmt.Errorf("failed to read state blob: %w", err)
	}

	st, err := s.codec.Decode(id, data)
	if err != nil {
		return pin.State{}, false, err
	}
	return st, true, nil
}

func (s *BlobStore) Store(ctx context.Context, id string, st pin.State) error {
	data, err := s.codec.Encode(id, st)
	if err != nil {
		return err
	}
	if err := s.storage.Write(ctx, s.key(id), data, contentType); err != nil {
		return fmt.Errorf("failed to write state blob: %w", err)
	}
	return nil
}

func (s *BlobStore) Close() error {
	return nil
}
