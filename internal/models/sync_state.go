package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntityType string

const (
	EntityTypeProduct  EntityType = "PRODUCT"
	EntityTypeCategory EntityType = "CATEGORY"
)

type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "PENDING"
	SyncStatusSyncing  SyncStatus = "SYNCING"
	SyncStatusSynced   SyncStatus = "SYNCED"
	SyncStatusError    SyncStatus = "ERROR"
	SyncStatusConflict SyncStatus = "CONFLICT"
	SyncStatusDisabled SyncStatus = "DISABLED"
)

// SyncState tracks one (entity, shop) synchronization pair. RemoteID is
// set once the first create succeeds and never cleared; Checksum and
// Snapshot are only written on success.
type SyncState struct {
	ID         string     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EntityType EntityType `json:"entity_type" gorm:"not null;uniqueIndex:idx_sync_states_entity_shop"`
	EntityID   string     `json:"entity_id" gorm:"type:uuid;not null;uniqueIndex:idx_sync_states_entity_shop"`
	ShopID     string     `json:"shop_id" gorm:"type:uuid;not null;uniqueIndex:idx_sync_states_entity_shop"`
	Status     SyncStatus `json:"status" gorm:"default:PENDING"`
	RemoteID   *int       `json:"remote_id"`
	Checksum   string     `json:"checksum"`
	// Snapshot is the flat field map the last successful push was hashed
	// from, kept to report changed fields on the next update.
	Snapshot      map[string]string `json:"snapshot" gorm:"type:jsonb;serializer:json"`
	RetryCount    int               `json:"retry_count"`
	LastError     string            `json:"last_error" gorm:"type:text"`
	LastSyncAt    *time.Time        `json:"last_sync_at"`
	LastSuccessAt *time.Time        `json:"last_success_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (s *SyncState) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
