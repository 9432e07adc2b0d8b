package service

import (
	"testing"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestParseAmount(t *testing.T) {
	assert.True(t, parseAmount("").IsZero())
	assert.True(t, parseAmount("abc").IsZero())
	assert.True(t, parseAmount("12,5").IsZero())
	assert.Equal(t, "12.50", parseAmount("12.5").StringFixed(2))
	assert.Equal(t, "-3.00", parseAmount("-3").StringFixed(2))
}

func TestNormalizeItemComputesAmount(t *testing.T) {
	item := normalizeItem(InvoiceItemPayload{
		Description: "Brake pads",
		Category:    "Brakes",
		Quantity:    "2",
		Unit:        "Set",
		Rate:        "45.50",
		ItemType:    "part",
	})

	assert.Equal(t, "91.00", item.Amount.StringFixed(2))
	assert.Equal(t, "Brake pads", item.Description)
	assert.Equal(t, model.ItemTypePart, item.ItemType)
}

func TestNormalizeItemAppliesDefaults(t *testing.T) {
	item := normalizeItem(InvoiceItemPayload{})

	assert.Equal(t, DefaultItemDescription, item.Description)
	assert.Equal(t, DefaultItemCategory, item.Category)
	assert.Equal(t, DefaultItemUnit, item.Unit)
	assert.Equal(t, model.ItemTypePart, item.ItemType)
	assert.True(t, item.Quantity.IsZero())
	assert.True(t, item.Rate.IsZero())
	assert.True(t, item.Amount.IsZero())
}

func TestNormalizeItemCoercesUnknownTypeToPart(t *testing.T) {
	assert.Equal(t, model.ItemTypePart, normalizeItem(InvoiceItemPayload{ItemType: "service"}).ItemType)
	assert.Equal(t, model.ItemTypePart, normalizeItem(InvoiceItemPayload{ItemType: "LABOR"}).ItemType)
	assert.Equal(t, model.ItemTypeLabor, normalizeItem(InvoiceItemPayload{ItemType: "labor"}).ItemType)
}

func TestNormalizeItemInvalidNumbersBecomeZero(t *testing.T) {
	item := normalizeItem(InvoiceItemPayload{
		Description: "Oil change",
		Quantity:    "three",
		Rate:        "29.99",
	})

	assert.True(t, item.Quantity.IsZero())
	assert.Equal(t, "29.99", item.Rate.StringFixed(2))
	assert.True(t, item.Amount.IsZero())
}

func TestNormalizeItemIgnoresFractionalDrift(t *testing.T) {
	// 0.1 * 0.2 must be exactly 0.02, not a float approximation
	item := normalizeItem(InvoiceItemPayload{Quantity: "0.1", Rate: "0.2"})
	assert.True(t, item.Amount.Equal(dec("0.02")))
}

func TestComputeTotalsPartitionsByType(t *testing.T) {
	items := []model.InvoiceItem{
		{ItemType: model.ItemTypePart, Amount: dec("100")},
		{ItemType: model.ItemTypePart, Amount: dec("50.25")},
		{ItemType: model.ItemTypeLabor, Amount: dec("80")},
	}

	totals := computeTotals(items, decimal.Zero, decimal.Zero)

	assert.Equal(t, "150.25", totals.PartsTotal.StringFixed(2))
	assert.Equal(t, "80.00", totals.LaborTotal.StringFixed(2))
	assert.Equal(t, "230.25", totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "230.25", totals.BalanceAmount.StringFixed(2))
}

func TestComputeTotalsAppliesDiscountAndPaid(t *testing.T) {
	items := []model.InvoiceItem{
		{ItemType: model.ItemTypePart, Amount: dec("200")},
		{ItemType: model.ItemTypeLabor, Amount: dec("100")},
	}

	totals := computeTotals(items, dec("30"), dec("150"))

	assert.Equal(t, "270.00", totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "120.00", totals.BalanceAmount.StringFixed(2))
}

func TestComputeTotalsOverpaymentYieldsNegativeBalance(t *testing.T) {
	items := []model.InvoiceItem{
		{ItemType: model.ItemTypeLabor, Amount: dec("50")},
	}

	totals := computeTotals(items, decimal.Zero, dec("80"))

	assert.Equal(t, "-30.00", totals.BalanceAmount.StringFixed(2))
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	totals := computeTotals(nil, decimal.Zero, decimal.Zero)

	assert.True(t, totals.PartsTotal.IsZero())
	assert.True(t, totals.LaborTotal.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, totals.BalanceAmount.IsZero())
}
