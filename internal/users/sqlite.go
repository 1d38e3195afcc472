package users

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	columnRecordID = "record_id"
	queryRecordID  = columnRecordID + " = ?"
	orderSeqAsc    = "seq ASC"
)

// SQLiteStoreConfig describes the dependencies of the database-backed store.
type SQLiteStoreConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Logger     *zap.Logger
}

// SQLiteStore persists records through gorm. Writes are serialized by the store.
type SQLiteStore struct {
	db     *gorm.DB
	ids    IDProvider
	logger *zap.Logger
	writes sync.Mutex
}

// NewSQLiteStore constructs the store. The schema is expected to be migrated already.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opSQLiteStoreNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opSQLiteStoreNew, "missing_id_provider", errMissingIDProvider)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &SQLiteStore{
		db:     cfg.Database,
		ids:    cfg.IDProvider,
		logger: logger,
	}, nil
}

// List returns every record ordered by insertion.
func (s *SQLiteStore) List(ctx context.Context) ([]UserRecord, error) {
	var rows []RecordRow
	if err := s.db.WithContext(ctx).Order(orderSeqAsc).Find(&rows).Error; err != nil {
		logError(s.logger, opList, reasonQueryFailed, err)
		return nil, fetchFailed(opList, reasonQueryFailed, err)
	}
	records := make([]UserRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}

// Get loads the record with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (UserRecord, error) {
	var row RecordRow
	err := s.db.WithContext(ctx).Where(queryRecordID, id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserRecord{}, newServiceError(opGet, reasonNotFound, ErrNotFound)
	}
	if err != nil {
		logError(s.logger, opGet, reasonQueryFailed, err, zap.String("record_id", id))
		return UserRecord{}, fetchFailed(opGet, reasonQueryFailed, err)
	}
	return row.Record(), nil
}

// Create inserts a new record and returns it with its identifier.
func (s *SQLiteStore) Create(ctx context.Context, fields Fields) (UserRecord, error) {
	if err := fields.validate(); err != nil {
		return UserRecord{}, newServiceError(opCreate, reasonInvalidFields, err)
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	id, err := s.ids.NewID()
	if err != nil {
		logError(s.logger, opCreate, reasonIDFailed, err)
		return UserRecord{}, newServiceError(opCreate, reasonIDFailed, err)
	}
	row := NewRecordRow(id, fields)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		logError(s.logger, opCreate, reasonInsertFailed, err, zap.String("record_id", id))
		return UserRecord{}, newServiceError(opCreate, reasonInsertFailed, err)
	}
	return row.Record(), nil
}

// Update replaces the record's fields. The row keeps its sequence, so ordering is preserved.
func (s *SQLiteStore) Update(ctx context.Context, id string, fields Fields) error {
	if err := fields.validate(); err != nil {
		return newServiceError(opUpdate, reasonInvalidFields, err)
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing RecordRow
		err := tx.Where(queryRecordID, id).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opUpdate, reasonNotFound, ErrNotFound)
		}
		if err != nil {
			logError(s.logger, opUpdate, reasonQueryFailed, err, zap.String("record_id", id))
			return fetchFailed(opUpdate, reasonQueryFailed, err)
		}

		updates := map[string]interface{}{
			"name":  fields.Name,
			"age":   fields.Age,
			"email": fields.Email,
			"phone": fields.Phone,
		}
		if err := tx.Model(&RecordRow{}).Where(queryRecordID, id).Updates(updates).Error; err != nil {
			logError(s.logger, opUpdate, reasonUpdateFailed, err, zap.String("record_id", id))
			return newServiceError(opUpdate, reasonUpdateFailed, err)
		}
		return nil
	})
}
