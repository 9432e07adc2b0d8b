package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateInvoice  = "CREATE_INVOICE"
	ActionUpdateInvoice  = "UPDATE_INVOICE"
	ActionDeleteInvoice  = "DELETE_INVOICE"
	ActionCreatePart     = "CREATE_PART"
	ActionUpdatePart     = "UPDATE_PART"
	ActionDeletePart     = "DELETE_PART"
	ActionCreateCustomer = "CREATE_CUSTOMER"
	ActionUpdateCustomer = "UPDATE_CUSTOMER"
	ActionDeleteCustomer = "DELETE_CUSTOMER"
	ActionCreateUser     = "CREATE_USER"
	ActionUpdateUser     = "UPDATE_USER"
	ActionDeleteUser     = "DELETE_USER"
	ActionUpdateRole     = "UPDATE_ROLE"

	// Written when an invoice item implicitly creates a catalog entry
	ActionAutoCreatePart = "AUTO_CREATE_PART"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
