package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
)

// PinStateModel is the GORM model for the pin_states table. Record holds the
// encoded state; Generation is duplicated for inspection.
type PinStateModel struct {
	StreamID   string    `gorm:"type:varchar(64);primaryKey"`
	Record     []byte    `gorm:"not null"`
	Generation int64     `gorm:"not null;default:1"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for PinStateModel.
func (PinStateModel) TableName() string {
	return "pin_states"
}

// GormStore keeps state in a SQL database (postgres, mysql or sqlite).
type GormStore struct {
	db    *gorm.DB
	codec *Codec
}

// NewGormStore creates a GORM-based store. Call AutoMigrate with
// PinStateModel first.
func NewGormStore(db *gorm.DB, codec *Codec) *GormStore {
	return &GormStore{
		db:    db,
		codec: codec,
	}
}

func (s *GormStore) Load(ctx context.Context, id string) (pin.State, bool, error) {
	var model PinStateModel
	result := s.db.WithContext(ctx).First(&model, "stream_id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return pin.State{}, false, nil
		}
		return pin.State{}, false, fmt.Errorf("failed to load state row: %w", result.Error)
	}

	st, err := s.codec.Decode(id, model.Record)
	if err != nil {
		return pin.State{}, false, err
	}
	return st, true, nil
}

func (s *GormStore) Store(ctx context.Context, id string, st pin.State) error {
	data, err := s.codec.Encode(id, st)
	if err != nil {
		return err
	}

	model := &PinStateModel{
		StreamID:   id,
		Record:     data,
		Generation: int64(st.Generation),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stream_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"record", "generation", "updated_at"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert state row: %w", result.Error)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
