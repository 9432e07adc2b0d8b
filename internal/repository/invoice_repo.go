package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows the invoice listing
type InvoiceListFilter struct {
	CustomerID    *uuid.UUID
	VehicleID     *uuid.UUID
	PaymentStatus string
	Page          int
	Limit         int
}

// InvoiceRepository defines data access for Invoice headers and their items.
// Items are owned by the invoice and replaced wholesale, never patched.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindLastByVehicle(ctx context.Context, vehicleID uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	InsertItems(ctx context.Context, items []model.InvoiceItem) error
	DeleteItems(ctx context.Context, invoiceID uuid.UUID) error
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoice_items.created_at asc")
		}).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindLastByVehicle(ctx context.Context, vehicleID uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Items").
		Where("vehicle_id = ?", vehicleID).
		Order("invoice_date desc, created_at desc").
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Invoice{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Customer").Preload("Vehicle").
		Order("invoice_date desc, created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) InsertItems(ctx context.Context, items []model.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *invoiceRepository) DeleteItems(ctx context.Context, invoiceID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.InvoiceItem{}, "invoice_id = ?", invoiceID).Error
}

func (r *invoiceRepository) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	if err := GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
