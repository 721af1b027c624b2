package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentifierMapping records the remote id an entity received in a shop.
// At most one mapping exists per (shop, entity type, local id).
type IdentifierMapping struct {
	ID         string     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShopID     string     `json:"shop_id" gorm:"type:uuid;not null;uniqueIndex:idx_identifier_mappings_key"`
	EntityType EntityType `json:"entity_type" gorm:"not null;uniqueIndex:idx_identifier_mappings_key"`
	LocalID    string     `json:"local_id" gorm:"not null;uniqueIndex:idx_identifier_mappings_key"`
	RemoteID   int        `json:"remote_id" gorm:"not null"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (m *IdentifierMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
