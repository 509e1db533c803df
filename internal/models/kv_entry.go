package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry: one persisted JSON document, keyed like the device key-value storage
type KVEntry struct {
	Key       string         `gorm:"column:doc_key;primaryKey;size:100"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
