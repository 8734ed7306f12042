package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
)

// Manager owns the badger database and the run store built on it.
type Manager struct {
	db       *BadgerDB
	snapshot interfaces.SnapshotStorage
	runs     interfaces.RunStorage
	logger   arbor.ILogger
}

// NewManager opens the database and creates the storages on top of it
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		snapshot: NewSnapshotStorage(db, logger),
		runs:     NewRunStorage(db, logger),
		logger:   logger,
	}

	logger.Debug().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// SnapshotStorage returns the stock snapshot storage
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshot
}

// RunStorage returns the run history storage
func (m *Manager) RunStorage() interfaces.RunStorage {
	return m.runs
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
