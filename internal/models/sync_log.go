package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncOperation string

const (
	SyncOperationCreate SyncOperation = "CREATE"
	SyncOperationUpdate SyncOperation = "UPDATE"
	SyncOperationSkip   SyncOperation = "SKIP"
)

type SyncLogStatus string

const (
	SyncLogStatusSuccess SyncLogStatus = "SUCCESS"
	SyncLogStatusError   SyncLogStatus = "ERROR"
)

type SyncDirection string

const (
	SyncDirectionPush SyncDirection = "PUSH"
)

// SyncLogEntry is one row of the append-only audit trail. Rows are only
// ever inserted.
type SyncLogEntry struct {
	ID         string        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShopID     string        `json:"shop_id" gorm:"type:uuid;not null;index"`
	EntityType EntityType    `json:"entity_type" gorm:"not null;index"`
	EntityID   string        `json:"entity_id" gorm:"not null;index"`
	Operation  SyncOperation `json:"operation" gorm:"not null"`
	Direction  SyncDirection `json:"direction" gorm:"default:PUSH"`
	Status     SyncLogStatus `json:"status" gorm:"not null"`
	Message    string        `json:"message" gorm:"type:text"`
	DurationMs int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (e *SyncLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
