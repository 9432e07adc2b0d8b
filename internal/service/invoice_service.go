package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type CreateInvoiceRequest struct {
	CustomerID     string               `json:"customer_id" binding:"required"`
	VehicleID      string               `json:"vehicle_id" binding:"required"`
	InvoiceDate    string               `json:"invoice_date"`
	Mileage        int64                `json:"mileage"`
	MechanicName   string               `json:"mechanic_name"`
	Notes          string               `json:"notes"`
	PaymentMethod  string               `json:"payment_method"`
	PaymentStatus  string               `json:"payment_status"`
	PaidAmount     string               `json:"paid_amount"`
	DiscountAmount string               `json:"discount_amount"`
	Items          []InvoiceItemPayload `json:"items"`
}

// UpdateInvoiceRequest carries the same shape as creation: the item set is
// always replaced wholesale, so a partial-item update does not exist.
type UpdateInvoiceRequest = CreateInvoiceRequest

type InvoiceFilter struct {
	CustomerID    string
	VehicleID     string
	PaymentStatus string
	Page          int
	Limit         int
}

type InvoiceItemResponse struct {
	ID          string  `json:"id"`
	PartID      *string `json:"part_id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
	Rate        string  `json:"rate"`
	Amount      string  `json:"amount"`
	ItemType    string  `json:"item_type"`
}

type InvoiceResponse struct {
	ID             string                `json:"id"`
	CustomerID     string                `json:"customer_id"`
	CustomerName   string                `json:"customer_name,omitempty"`
	VehicleID      string                `json:"vehicle_id"`
	RegistrationNo string                `json:"registration_no,omitempty"`
	InvoiceDate    string                `json:"invoice_date"`
	Mileage        int64                 `json:"mileage"`
	MechanicName   string                `json:"mechanic_name"`
	Notes          string                `json:"notes"`
	PaymentMethod  string                `json:"payment_method"`
	PaymentStatus  string                `json:"payment_status"`
	PaidAmount     string                `json:"paid_amount"`
	DiscountAmount string                `json:"discount_amount"`
	PartsTotal     string                `json:"parts_total"`
	LaborTotal     string                `json:"labor_total"`
	GrandTotal     string                `json:"grand_total"`
	BalanceAmount  string                `json:"balance_amount"`
	Items          []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt      string                `json:"created_at"`
	UpdatedAt      string                `json:"updated_at"`
}

// InvoicePrintDocument is the expanded payload behind GET /api/invoices/:id/print
type InvoicePrintDocument struct {
	Invoice  InvoiceResponse `json:"invoice"`
	Customer *model.Customer `json:"customer"`
	Vehicle  *model.Vehicle  `json:"vehicle"`
}

// --- Interface ---

// InvoiceService orchestrates the invoice lifecycle: header persistence,
// catalog resolution, item normalization, wholesale item replacement, and
// totals computation, all committed in one transaction. Caller identity is
// always an explicit argument, never read from ambient context.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, callerID string, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	UpdateInvoice(ctx context.Context, callerID, id string, req UpdateInvoiceRequest) (*InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, callerID, id string) error
	LastInvoiceForVehicle(ctx context.Context, vehicleID string) (*InvoiceResponse, error)
	PrintInvoice(ctx context.Context, id string) (*InvoicePrintDocument, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	vehicleRepo  repository.VehicleRepository
	auditRepo    repository.AuditRepository
	resolver     PartService
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditRepository,
	resolver PartService,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		auditRepo:    auditRepo,
		resolver:     resolver,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Validation helpers ---

var validPaymentStatuses = map[string]bool{
	model.PaymentPaid:    true,
	model.PaymentUnpaid:  true,
	model.PaymentPartial: true,
	model.PaymentPending: true,
}

type invoiceInput struct {
	customerID  uuid.UUID
	vehicleID   uuid.UUID
	invoiceDate time.Time
	status      string
	paid        decimal.Decimal
	discount    decimal.Decimal
}

func (s *invoiceService) validateRequest(ctx context.Context, req CreateInvoiceRequest) (invoiceInput, error) {
	var in invoiceInput

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return in, fmt.Errorf("invalid customer_id: %w", err)
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return in, fmt.Errorf("invalid vehicle_id: %w", err)
	}
	if len(req.Items) == 0 {
		return in, fmt.Errorf("invoice must contain at least one item")
	}

	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return in, fmt.Errorf("customer not found: %w", err)
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return in, fmt.Errorf("vehicle not found: %w", err)
	}
	if vehicle.CustomerID != customerID {
		return in, fmt.Errorf("vehicle does not belong to the given customer")
	}

	in.status = req.PaymentStatus
	if in.status == "" {
		in.status = model.PaymentUnpaid
	}
	if !validPaymentStatuses[in.status] {
		return in, fmt.Errorf("payment_status must be one of: paid, unpaid, partial, pending")
	}

	in.paid = decimal.Zero
	if req.PaidAmount != "" {
		in.paid, err = decimal.NewFromString(req.PaidAmount)
		if err != nil {
			return in, fmt.Errorf("invalid paid_amount: %w", err)
		}
	}
	in.discount = decimal.Zero
	if req.DiscountAmount != "" {
		in.discount, err = decimal.NewFromString(req.DiscountAmount)
		if err != nil {
			return in, fmt.Errorf("invalid discount_amount: %w", err)
		}
	}

	in.invoiceDate = time.Now()
	if req.InvoiceDate != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.InvoiceDate)
		if parseErr != nil {
			parsed, parseErr = time.Parse("2006-01-02", req.InvoiceDate)
		}
		if parseErr != nil {
			return in, fmt.Errorf("invalid invoice_date: %w", parseErr)
		}
		in.invoiceDate = parsed
	}

	in.customerID = customerID
	in.vehicleID = vehicleID
	return in, nil
}

// buildItems resolves and normalizes the raw item rows for an invoice
func (s *invoiceService) buildItems(ctx context.Context, invoiceID uuid.UUID, raw []InvoiceItemPayload) []model.InvoiceItem {
	items := make([]model.InvoiceItem, 0, len(raw))
	for _, payload := range raw {
		item := normalizeItem(payload)
		item.InvoiceID = invoiceID
		item.PartID = s.resolver.Resolve(ctx, item.Description, item.Category, item.Rate, item.Unit)
		items = append(items, item)
	}
	return items
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, callerID string, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	in, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	invoice := model.Invoice{
		CustomerID:     in.customerID,
		VehicleID:      in.vehicleID,
		InvoiceDate:    in.invoiceDate,
		Mileage:        req.Mileage,
		MechanicName:   req.MechanicName,
		Notes:          req.Notes,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  in.status,
		PaidAmount:     in.paid,
		DiscountAmount: in.discount,
	}

	// Header, items, and totals commit atomically: a failure anywhere rolls
	// back the header, so no orphaned zero-total invoice can remain.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		items := s.buildItems(txCtx, invoice.ID, req.Items)
		if err := s.invoiceRepo.InsertItems(txCtx, items); err != nil {
			return fmt.Errorf("failed to insert invoice items: %w", err)
		}

		totals := computeTotals(items, in.discount, in.paid)
		invoice.PartsTotal = totals.PartsTotal
		invoice.LaborTotal = totals.LaborTotal
		invoice.GrandTotal = totals.GrandTotal
		invoice.BalanceAmount = totals.BalanceAmount

		if err := s.invoiceRepo.Update(txCtx, &invoice); err != nil {
			// An invoice persisted without its derived totals is an
			// integrity error, so the whole transaction aborts.
			logrus.WithError(err).WithField("invoice_id", invoice.ID).
				Error("totals write-back failed, rolling back invoice creation")
			return fmt.Errorf("failed to finalize invoice totals: %w", err)
		}

		s.audit(txCtx, callerID, model.ActionCreateInvoice, invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	reloaded, err := s.invoiceRepo.FindByIDWithDetails(ctx, invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload invoice: %w", err)
	}

	s.publishEvent("invoice.created", reloaded)
	resp := toInvoiceResponse(*reloaded)
	return &resp, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithDetails(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}

	resp := toInvoiceResponse(*invoice)
	return &resp, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.InvoiceListFilter{
		PaymentStatus: filter.PaymentStatus,
		Page:          filter.Page,
		Limit:         filter.Limit,
	}
	if filter.CustomerID != "" {
		parsed, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid customer_id: %w", err)
		}
		repoFilter.CustomerID = &parsed
	}
	if filter.VehicleID != "" {
		parsed, err := uuid.Parse(filter.VehicleID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid vehicle_id: %w", err)
		}
		repoFilter.VehicleID = &parsed
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, callerID, id string, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}

	in, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			return fmt.Errorf("invoice not found: %w", findErr)
		}

		invoice.CustomerID = in.customerID
		invoice.VehicleID = in.vehicleID
		invoice.InvoiceDate = in.invoiceDate
		invoice.Mileage = req.Mileage
		invoice.MechanicName = req.MechanicName
		invoice.Notes = req.Notes
		invoice.PaymentMethod = req.PaymentMethod
		invoice.PaymentStatus = in.status
		invoice.PaidAmount = in.paid
		invoice.DiscountAmount = in.discount

		// Full replace is the only supported edit strategy for items
		if err := s.invoiceRepo.DeleteItems(txCtx, invoiceID); err != nil {
			return fmt.Errorf("failed to clear invoice items: %w", err)
		}

		items := s.buildItems(txCtx, invoiceID, req.Items)
		if err := s.invoiceRepo.InsertItems(txCtx, items); err != nil {
			return fmt.Errorf("failed to insert invoice items: %w", err)
		}

		totals := computeTotals(items, in.discount, in.paid)
		invoice.PartsTotal = totals.PartsTotal
		invoice.LaborTotal = totals.LaborTotal
		invoice.GrandTotal = totals.GrandTotal
		invoice.BalanceAmount = totals.BalanceAmount

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		s.audit(txCtx, callerID, model.ActionUpdateInvoice, *invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	reloaded, err := s.invoiceRepo.FindByIDWithDetails(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload invoice: %w", err)
	}

	s.publishEvent("invoice.updated", reloaded)
	resp := toInvoiceResponse(*reloaded)
	return &resp, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, callerID, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("invoice not found: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.DeleteItems(txCtx, invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice items: %w", err)
		}
		if err := s.invoiceRepo.Delete(txCtx, invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		s.audit(txCtx, callerID, model.ActionDeleteInvoice, *invoice)
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent("invoice.deleted", invoice)
	return nil
}

func (s *invoiceService) LastInvoiceForVehicle(ctx context.Context, vehicleID string) (*InvoiceResponse, error) {
	parsed, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle_id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindLastByVehicle(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("no invoice found for vehicle: %w", err)
	}

	resp := toInvoiceResponse(*invoice)
	return &resp, nil
}

func (s *invoiceService) PrintInvoice(ctx context.Context, id string) (*InvoicePrintDocument, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithDetails(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}

	return &InvoicePrintDocument{
		Invoice:  toInvoiceResponse(*invoice),
		Customer: invoice.Customer,
		Vehicle:  invoice.Vehicle,
	}, nil
}

// --- Side channels ---

func (s *invoiceService) audit(ctx context.Context, callerID, action string, invoice model.Invoice) {
	details, _ := json.Marshal(map[string]interface{}{
		"grand_total":    invoice.GrandTotal.StringFixed(2),
		"balance_amount": invoice.BalanceAmount.StringFixed(2),
		"payment_status": invoice.PaymentStatus,
	})
	entry := model.AuditLog{
		Action:   action,
		EntityID: invoice.ID.String(),
		Details:  string(details),
	}
	if parsed, err := uuid.Parse(callerID); err == nil {
		entry.UserID = &parsed
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("failed to write audit log")
	}
}

func (s *invoiceService) publishEvent(event string, invoice *model.Invoice) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":          event,
		"invoice_id":     invoice.ID.String(),
		"grand_total":    invoice.GrandTotal.StringFixed(2),
		"payment_status": invoice.PaymentStatus,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

// --- Mapping ---

func toInvoiceItemResponse(item model.InvoiceItem) InvoiceItemResponse {
	resp := InvoiceItemResponse{
		ID:          item.ID.String(),
		Description: item.Description,
		Category:    item.Category,
		Quantity:    item.Quantity.StringFixed(2),
		Unit:        item.Unit,
		Rate:        item.Rate.StringFixed(2),
		Amount:      item.Amount.StringFixed(2),
		ItemType:    item.ItemType,
	}
	if item.PartID != nil {
		s := item.PartID.String()
		resp.PartID = &s
	}
	return resp
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID.String(),
		CustomerID:     inv.CustomerID.String(),
		VehicleID:      inv.VehicleID.String(),
		InvoiceDate:    inv.InvoiceDate.Format(time.RFC3339),
		Mileage:        inv.Mileage,
		MechanicName:   inv.MechanicName,
		Notes:          inv.Notes,
		PaymentMethod:  inv.PaymentMethod,
		PaymentStatus:  inv.PaymentStatus,
		PaidAmount:     inv.PaidAmount.StringFixed(2),
		DiscountAmount: inv.DiscountAmount.StringFixed(2),
		PartsTotal:     inv.PartsTotal.StringFixed(2),
		LaborTotal:     inv.LaborTotal.StringFixed(2),
		GrandTotal:     inv.GrandTotal.StringFixed(2),
		BalanceAmount:  inv.BalanceAmount.StringFixed(2),
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      inv.UpdatedAt.Format(time.RFC3339),
	}
	if inv.Customer != nil {
		resp.CustomerName = inv.Customer.Name
	}
	if inv.Vehicle != nil {
		resp.RegistrationNo = inv.Vehicle.RegistrationNo
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, toInvoiceItemResponse(item))
	}
	return resp
}
