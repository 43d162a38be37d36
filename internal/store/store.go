package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classroom-backend/internal/model"
)

// ErrNoChange may be returned by an UpdateFunc to leave the stored value
// untouched; Update then returns nil.
var ErrNoChange = errors.New("store: no change")

// ErrConflict is returned when an optimistic update keeps losing to
// concurrent writers.
var ErrConflict = errors.New("store: too many concurrent updates")

// UpdateFunc receives the current value of a key and returns its new value.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Store is durable key/value blob storage. Values are JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Update performs a read-modify-write of key that no other Update on the
	// same key can interleave with.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, found, err := fetchEntry(s.db.WithContext(ctx), key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return []byte(entry.Value), true, nil
}

func (s *gormStore) Set(ctx context.Context, key string, value []byte) error {
	return upsertEntry(s.db.WithContext(ctx), key, value)
}

// Update runs fn inside a transaction. On postgres the row is locked with
// SELECT ... FOR UPDATE; sqlite serialises writers on its own.
func (s *gormStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		entry, found, err := fetchEntry(query, key)
		if err != nil {
			return err
		}

		next, err := fn([]byte(entry.Value), found)
		if err != nil {
			return err
		}
		return upsertEntry(tx, key, next)
	})
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	return err
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&model.KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func fetchEntry(tx *gorm.DB, key string) (model.KVEntry, bool, error) {
	var entry model.KVEntry
	err := tx.Where("entry_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.KVEntry{}, false, nil
	}
	if err != nil {
		return model.KVEntry{}, false, fmt.Errorf("failed to fetch %q: %w", key, err)
	}
	return entry, true, nil
}

func upsertEntry(tx *gorm.DB, key string, value []byte) error {
	entry := model.KVEntry{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}
