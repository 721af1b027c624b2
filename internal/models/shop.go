package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is one PrestaShop storefront acting as a sync target.
type Shop struct {
	ID         string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name       string `json:"name" gorm:"not null"`
	URL        string `json:"url" gorm:"not null"`
	APIKey     string `json:"api_key" gorm:"not null"`
	APIVersion string `json:"api_version" gorm:"default:1.7"`
	Active     bool   `json:"active" gorm:"default:true"`
	// Languages the storefront is configured with; multilingual payload
	// fields are replicated once per entry.
	Languages []string `json:"languages" gorm:"type:jsonb;serializer:json"`
	// RootCategoryRemoteID is the remote id products fall back to when a
	// local category has no mapping for this shop.
	RootCategoryRemoteID int        `json:"root_category_remote_id" gorm:"default:2"`
	LastSync             *time.Time `json:"last_sync"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// LanguageCodes returns the configured languages, defaulting to a single
// language so multilingual wrapping never produces an empty set.
func (s *Shop) LanguageCodes() []string {
	if len(s.Languages) == 0 {
		return []string{"en"}
	}
	return s.Languages
}
