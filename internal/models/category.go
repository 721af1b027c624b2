package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description"`
	ParentID    *string   `json:"parent_id" gorm:"type:uuid;index"`
	Active      bool      `json:"active" gorm:"default:true"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// IsRoot reports whether the category sits at the top of the tree.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
