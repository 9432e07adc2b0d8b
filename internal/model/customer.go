package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a shop customer owning zero or more vehicles
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Address   string         `gorm:"type:text" json:"address"`
	IsActive  bool           `json:"is_active"`
	Vehicles  []Vehicle      `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"vehicles,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Vehicle represents a customer's vehicle serviced by the shop
type Vehicle struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer       *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RegistrationNo string         `gorm:"type:varchar(50);not null;index" json:"registration_no"`
	Make           string         `gorm:"type:varchar(100)" json:"make"`
	Model          string         `gorm:"type:varchar(100)" json:"model"`
	Year           int            `json:"year"`
	Mileage        int64          `json:"mileage"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Assign IDs client-side so databases without gen_random_uuid() work too

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
