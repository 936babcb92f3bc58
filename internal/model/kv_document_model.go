package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVDocument backs the document store when STORE_DRIVER=postgres.
type KVDocument struct {
	Key       string         `gorm:"type:varchar(255);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	ExpiresAt *time.Time     `gorm:"index:idx_kv_documents_expires_at" json:"expires_at,omitempty"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (KVDocument) TableName() string {
	return "kv_documents"
}
