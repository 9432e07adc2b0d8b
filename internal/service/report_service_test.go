package service

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSummaryAggregatesInvoices(t *testing.T) {
	db := setupTestDB(t)
	deps := newInvoiceTestDeps(t, db)
	customer, vehicle := seedCustomerWithVehicle(t, db)

	_, err := deps.service.CreateInvoice(testCtx, "", CreateInvoiceRequest{
		CustomerID:    customer.ID.String(),
		VehicleID:     vehicle.ID.String(),
		InvoiceDate:   "2026-02-10",
		PaymentStatus: model.PaymentPaid,
		PaidAmount:    "130",
		Items: []InvoiceItemPayload{
			{Description: "Brake pads", Quantity: "2", Rate: "25", ItemType: "part"},
			{Description: "Brake service", Quantity: "1", Rate: "80", ItemType: "labor"},
		},
	})
	require.NoError(t, err)

	_, err = deps.service.CreateInvoice(testCtx, "", CreateInvoiceRequest{
		CustomerID:    customer.ID.String(),
		VehicleID:     vehicle.ID.String(),
		InvoiceDate:   "2026-02-20",
		PaymentStatus: model.PaymentUnpaid,
		Items: []InvoiceItemPayload{
			{Description: "Brake pads", Quantity: "1", Rate: "25", ItemType: "part"},
		},
	})
	require.NoError(t, err)

	// outside the queried range, must not be counted
	_, err = deps.service.CreateInvoice(testCtx, "", CreateInvoiceRequest{
		CustomerID:  customer.ID.String(),
		VehicleID:   vehicle.ID.String(),
		InvoiceDate: "2025-12-01",
		Items: []InvoiceItemPayload{
			{Description: "Coolant", Quantity: "1", Rate: "999", ItemType: "part"},
		},
	})
	require.NoError(t, err)

	svc := NewReportService(db)
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)

	summary, err := svc.GetSummary(testCtx, start, end)
	require.NoError(t, err)

	assert.EqualValues(t, 2, summary.InvoiceCount)
	assert.Equal(t, "155.00", summary.Revenue.StringFixed(2))
	assert.Equal(t, "130.00", summary.Collected.StringFixed(2))
	assert.Equal(t, "25.00", summary.Outstanding.StringFixed(2))
	assert.Equal(t, "75.00", summary.PartsRevenue.StringFixed(2))
	assert.Equal(t, "80.00", summary.LaborRevenue.StringFixed(2))

	byStatus := make(map[string]int64)
	for _, sc := range summary.StatusBreakdown {
		byStatus[sc.PaymentStatus] = sc.Count
	}
	assert.EqualValues(t, 1, byStatus[model.PaymentPaid])
	assert.EqualValues(t, 1, byStatus[model.PaymentUnpaid])

	require.NotEmpty(t, summary.TopParts)
	assert.Equal(t, "Brake pads", summary.TopParts[0].Description)
	assert.Equal(t, "3.00", summary.TopParts[0].TotalQuantity.StringFixed(2))
}

func TestGetSummaryEmptyRange(t *testing.T) {
	db := setupTestDB(t)

	svc := NewReportService(db)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	summary, err := svc.GetSummary(testCtx, start, end)
	require.NoError(t, err)

	assert.Zero(t, summary.InvoiceCount)
	assert.True(t, summary.Revenue.IsZero())
	assert.True(t, summary.Outstanding.IsZero())
	assert.Empty(t, summary.TopParts)
}
