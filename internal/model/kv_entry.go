package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one blob of the persistent key/value store.
type KVEntry struct {
	Key       string         `gorm:"column:entry_key;primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

// TableName pins the table name independent of the struct name.
func (KVEntry) TableName() string {
	return "kv_entries"
}
