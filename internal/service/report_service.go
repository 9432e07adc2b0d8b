package service

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PartRanking is a catalog entry ranked by invoiced quantity
type PartRanking struct {
	Description   string          `json:"description"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// StatusCount is the number of invoices per payment status
type StatusCount struct {
	PaymentStatus string `json:"payment_status"`
	Count         int64  `json:"count"`
}

// ReportSummary aggregates shop activity over a time range for the dashboard
type ReportSummary struct {
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	InvoiceCount    int64           `json:"invoice_count"`
	Revenue         decimal.Decimal `json:"revenue"`   // sum of grand totals
	Collected       decimal.Decimal `json:"collected"` // sum of paid amounts
	Outstanding     decimal.Decimal `json:"outstanding"`
	PartsRevenue    decimal.Decimal `json:"parts_revenue"`
	LaborRevenue    decimal.Decimal `json:"labor_revenue"`
	StatusBreakdown []StatusCount   `json:"status_breakdown"`
	TopParts        []PartRanking   `json:"top_parts"`
}

type ReportService interface {
	GetSummary(ctx context.Context, startDate, endDate time.Time) (ReportSummary, error)
}

type reportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

// GetSummary computes dashboard aggregates over invoices dated within the range
func (s *reportService) GetSummary(ctx context.Context, startDate, endDate time.Time) (ReportSummary, error) {
	summary := ReportSummary{
		StartDate: startDate,
		EndDate:   endDate,
	}

	base := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("invoice_date >= ? AND invoice_date <= ?", startDate, endDate)

	if err := base.Session(&gorm.Session{}).Count(&summary.InvoiceCount).Error; err != nil {
		return summary, err
	}

	var totals struct {
		Revenue      decimal.Decimal
		Collected    decimal.Decimal
		Outstanding  decimal.Decimal
		PartsRevenue decimal.Decimal
		LaborRevenue decimal.Decimal
	}
	err := base.Session(&gorm.Session{}).
		Select(`COALESCE(SUM(grand_total), 0) as revenue,
			COALESCE(SUM(paid_amount), 0) as collected,
			COALESCE(SUM(balance_amount), 0) as outstanding,
			COALESCE(SUM(parts_total), 0) as parts_revenue,
			COALESCE(SUM(labor_total), 0) as labor_revenue`).
		Scan(&totals).Error
	if err != nil {
		return summary, err
	}
	summary.Revenue = totals.Revenue
	summary.Collected = totals.Collected
	summary.Outstanding = totals.Outstanding
	summary.PartsRevenue = totals.PartsRevenue
	summary.LaborRevenue = totals.LaborRevenue

	err = base.Session(&gorm.Session{}).
		Select("payment_status, COUNT(*) as count").
		Group("payment_status").
		Scan(&summary.StatusBreakdown).Error
	if err != nil {
		return summary, err
	}

	err = s.db.WithContext(ctx).Table("invoice_items").
		Select(`invoice_items.description,
			COALESCE(SUM(invoice_items.quantity), 0) as total_quantity,
			COALESCE(SUM(invoice_items.amount), 0) as total_value`).
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoice_items.item_type = ? AND invoices.invoice_date >= ? AND invoices.invoice_date <= ?",
			model.ItemTypePart, startDate, endDate).
		Group("invoice_items.description").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&summary.TopParts).Error
	if err != nil {
		return summary, err
	}

	return summary, nil
}
