package service

import (
	"github.com/shopspring/decimal"

	"backend/internal/model"
)

// Defaults applied when normalizing client-submitted line items
const (
	DefaultItemDescription = "Misc item"
	DefaultItemCategory    = "General"
	DefaultItemUnit        = "No"
)

// InvoiceItemPayload is the raw client-submitted shape of a line item.
// Quantity and rate arrive as strings; anything unparseable is coerced to
// zero rather than rejected. Any client-sent amount is ignored.
type InvoiceItemPayload struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Rate        string `json:"rate"`
	ItemType    string `json:"item_type"`
}

// InvoiceTotals holds the derived monetary aggregates of an invoice
type InvoiceTotals struct {
	PartsTotal    decimal.Decimal
	LaborTotal    decimal.Decimal
	GrandTotal    decimal.Decimal
	BalanceAmount decimal.Decimal
}

// parseAmount coerces a client-sent numeric string to a decimal, falling back
// to zero on missing or malformed input
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeItem converts a raw payload row into a canonical item with the
// amount recomputed server-side as quantity * rate
func normalizeItem(raw InvoiceItemPayload) model.InvoiceItem {
	item := model.InvoiceItem{
		Description: raw.Description,
		Category:    raw.Category,
		Quantity:    parseAmount(raw.Quantity),
		Unit:        raw.Unit,
		Rate:        parseAmount(raw.Rate),
		ItemType:    raw.ItemType,
	}

	if item.Description == "" {
		item.Description = DefaultItemDescription
	}
	if item.Category == "" {
		item.Category = DefaultItemCategory
	}
	if item.Unit == "" {
		item.Unit = DefaultItemUnit
	}
	if item.ItemType != model.ItemTypeLabor {
		item.ItemType = model.ItemTypePart
	}

	item.Amount = item.Quantity.Mul(item.Rate)
	return item
}

// computeTotals partitions items by type and derives the invoice aggregates:
// grand = parts + labor - discount, balance = grand - paid
func computeTotals(items []model.InvoiceItem, discount, paid decimal.Decimal) InvoiceTotals {
	totals := InvoiceTotals{
		PartsTotal: decimal.Zero,
		LaborTotal: decimal.Zero,
	}

	for _, item := range items {
		if item.ItemType == model.ItemTypeLabor {
			totals.LaborTotal = totals.LaborTotal.Add(item.Amount)
		} else {
			totals.PartsTotal = totals.PartsTotal.Add(item.Amount)
		}
	}

	totals.GrandTotal = totals.PartsTotal.Add(totals.LaborTotal).Sub(discount)
	totals.BalanceAmount = totals.GrandTotal.Sub(paid)
	return totals
}
