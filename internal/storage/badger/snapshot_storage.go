package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SnapshotStorage stores one stock snapshot per report day
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

func snapshotKey(day string) string {
	return "snapshot:" + day
}

// SaveSnapshot replaces the snapshot for day
func (s *SnapshotStorage) SaveSnapshot(ctx context.Context, day string, records []models.StockRecord) error {
	snapshot := models.StockSnapshot{
		Day:       day,
		Records:   records,
		CreatedAt: time.Now(),
	}

	if err := s.db.Store().Upsert(snapshotKey(day), &snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", day, err)
	}

	s.logger.Debug().Str("day", day).Int("records", len(records)).Msg("Stock snapshot saved")
	return nil
}

// GetSnapshot returns the records stored for day
func (s *SnapshotStorage) GetSnapshot(ctx context.Context, day string) ([]models.StockRecord, error) {
	var snapshot models.StockSnapshot
	err := s.db.Store().Get(snapshotKey(day), &snapshot)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", day, err)
	}

	return snapshot.Records, nil
}
