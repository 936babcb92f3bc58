package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subscription-tracker-be/internal/model"
	"subscription-tracker-be/internal/repository/scope"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore keeps each document as a jsonb row in kv_documents.
// Expired rows are treated as absent and replaced on the next write.
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&model.KVDocument{}); err != nil {
		return nil, fmt.Errorf("migrate kv_documents: %w", err)
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (s *PostgresStore) expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	at := s.now().Add(ttl)
	return &at
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc model.KVDocument
	err := s.db.WithContext(ctx).
		Scopes(scope.ByKey(key), scope.Live(s.now())).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	doc := model.KVDocument{
		Key:       key,
		Value:     datatypes.JSON(value),
		ExpiresAt: s.expiry(ttl),
		UpdatedAt: s.now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("postgres put %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var written bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(scope.ByKey(key), scope.Expired(s.now())).
			Delete(&model.KVDocument{}).Error; err != nil {
			return err
		}

		doc := model.KVDocument{
			Key:       key,
			Value:     datatypes.JSON(value),
			ExpiresAt: s.expiry(ttl),
			UpdatedAt: s.now(),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&doc)
		if res.Error != nil {
			return res.Error
		}
		written = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("postgres put-if-absent %s: %w", key, err)
	}
	return written, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Scopes(scope.ByKey(key)).Delete(&model.KVDocument{}).Error; err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

// PurgeExpired removes rows whose ttl has elapsed.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Scopes(scope.Expired(s.now())).Delete(&model.KVDocument{})
	return res.RowsAffected, res.Error
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
