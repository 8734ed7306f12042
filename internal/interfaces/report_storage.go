package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/marketbrief/internal/models"
)

// ErrNotFound is returned when a stored record does not exist
var ErrNotFound = errors.New("not found")

// SnapshotStorage persists the per-day stock snapshot
type SnapshotStorage interface {
	SaveSnapshot(ctx context.Context, day string, records []models.StockRecord) error
	GetSnapshot(ctx context.Context, day string) ([]models.StockRecord, error) // ErrNotFound when missing
}

// RunStorage persists pipeline run history
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) // Newest first
}

// StorageManager owns the database and hands out the storages
type StorageManager interface {
	SnapshotStorage() SnapshotStorage
	RunStorage() RunStorage
	Close() error
}
