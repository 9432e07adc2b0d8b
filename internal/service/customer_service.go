package service

import (
	"context"
	"fmt"
	"net/mail"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

type CustomerResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	Address   string            `json:"address"`
	IsActive  bool              `json:"is_active"`
	Vehicles  []VehicleResponse `json:"vehicles,omitempty"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, callerID string, req CreateCustomerRequest) (*CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*CustomerResponse, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
	UpdateCustomer(ctx context.Context, callerID, id string, req UpdateCustomerRequest) (*CustomerResponse, error)
	DeleteCustomer(ctx context.Context, callerID, id string) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository, auditRepo repository.AuditRepository) CustomerService {
	return &customerService{customerRepo: customerRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *customerService) CreateCustomer(ctx context.Context, callerID string, req CreateCustomerRequest) (*CustomerResponse, error) {
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return nil, fmt.Errorf("invalid email format")
		}
	}

	customer := model.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		IsActive: true,
	}

	if err := s.customerRepo.Create(ctx, &customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.audit(ctx, callerID, model.ActionCreateCustomer, customer.ID.String(), customer.Name)

	resp := toCustomerResponse(customer)
	return &resp, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByIDWithVehicles(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer not found: %w", err)
	}

	resp := toCustomerResponse(*customer)
	return &resp, nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	customers, total, err := s.customerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	result := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c))
	}
	return result, total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, callerID, id string, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer not found: %w", err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		if *req.Email != "" {
			if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
				return nil, fmt.Errorf("invalid email format")
			}
		}
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.audit(ctx, callerID, model.ActionUpdateCustomer, id, customer.Name)

	resp := toCustomerResponse(*customer)
	return &resp, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, callerID, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("customer not found: %w", err)
	}

	if err := s.customerRepo.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.audit(ctx, callerID, model.ActionDeleteCustomer, id, customer.Name)
	return nil
}

func (s *customerService) audit(ctx context.Context, callerID, action, entityID, entityName string) {
	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if parsed, err := uuid.Parse(callerID); err == nil {
		entry.UserID = &parsed
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("failed to write audit log")
	}
}

// --- Mapping ---

func toCustomerResponse(c model.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: c.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, v := range c.Vehicles {
		resp.Vehicles = append(resp.Vehicles, toVehicleResponse(v))
	}
	return resp
}
