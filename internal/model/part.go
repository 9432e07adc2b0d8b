package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Part is a reusable catalog entry (part or service) with a default rate.
// Rows are created explicitly through catalog management, or implicitly when an
// invoice line item's description matches no active entry.
type Part struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Category  string          `gorm:"type:varchar(100);not null;default:'General'" json:"category"`
	Unit      string          `gorm:"type:varchar(50);not null;default:'No'" json:"unit"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"rate"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Part) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
