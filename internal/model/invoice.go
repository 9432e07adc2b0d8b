package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus enum constants
const (
	PaymentPaid    = "paid"
	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentPending = "pending"
)

// ItemType enum constants
const (
	ItemTypePart  = "part"
	ItemTypeLabor = "labor"
)

// Invoice is the header of a service transaction. Totals are derived from the
// item set and written back in the same transaction that writes the items:
// grand_total = parts_total + labor_total - discount_amount and
// balance_amount = grand_total - paid_amount, always recomputed together.
type Invoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer       *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VehicleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle        *Vehicle        `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	InvoiceDate    time.Time       `gorm:"not null;index" json:"invoice_date"`
	Mileage        int64           `json:"mileage"`
	MechanicName   string          `gorm:"type:varchar(255)" json:"mechanic_name"`
	Notes          string          `gorm:"type:text" json:"notes"`
	PaymentMethod  string          `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentStatus  string          `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	PartsTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"parts_total"`
	LaborTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"labor_total"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"grand_total"`
	BalanceAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"balance_amount"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InvoiceItem is a single billable line owned exclusively by its invoice.
// The item set is replaced wholesale on every update, never patched in place.
// amount == quantity * rate is recomputed on every write; client-sent amounts
// are never trusted.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	PartID      *uuid.UUID      `gorm:"type:uuid;index" json:"part_id"` // nil when catalog linking failed
	Part        *Part           `gorm:"foreignKey:PartID" json:"part,omitempty"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Category    string          `gorm:"type:varchar(100);not null" json:"category"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(50);not null" json:"unit"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	ItemType    string          `gorm:"type:varchar(20);not null;default:'part'" json:"item_type"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
