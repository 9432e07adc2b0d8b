package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateVehicleRequest struct {
	CustomerID     string `json:"customer_id" binding:"required"`
	RegistrationNo string `json:"registration_no" binding:"required"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	Mileage        int64  `json:"mileage"`
}

type UpdateVehicleRequest struct {
	RegistrationNo *string `json:"registration_no"`
	Make           *string `json:"make"`
	Model          *string `json:"model"`
	Year           *int    `json:"year"`
	Mileage        *int64  `json:"mileage"`
}

type VehicleResponse struct {
	ID             string `json:"id"`
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name,omitempty"`
	RegistrationNo string `json:"registration_no"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	Mileage        int64  `json:"mileage"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// --- Interface ---

type VehicleService interface {
	CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*VehicleResponse, error)
	GetVehicle(ctx context.Context, id string) (*VehicleResponse, error)
	ListVehicles(ctx context.Context, search string, page, limit int) ([]VehicleResponse, int64, error)
	ListByCustomer(ctx context.Context, customerID string) ([]VehicleResponse, error)
	UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest) (*VehicleResponse, error)
	DeleteVehicle(ctx context.Context, id string) error
}

type vehicleService struct {
	vehicleRepo  repository.VehicleRepository
	customerRepo repository.CustomerRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, customerRepo repository.CustomerRepository) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo, customerRepo: customerRepo}
}

// --- Implementation ---

func (s *vehicleService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*VehicleResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer_id: %w", err)
	}

	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("customer not found: %w", err)
	}

	vehicle := model.Vehicle{
		CustomerID:     customerID,
		RegistrationNo: req.RegistrationNo,
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		Mileage:        req.Mileage,
	}

	if err := s.vehicleRepo.Create(ctx, &vehicle); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	resp := toVehicleResponse(vehicle)
	return &resp, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id string) (*VehicleResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("vehicle not found: %w", err)
	}

	resp := toVehicleResponse(*vehicle)
	return &resp, nil
}

func (s *vehicleService) ListVehicles(ctx context.Context, search string, page, limit int) ([]VehicleResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	vehicles, total, err := s.vehicleRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	result := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		result = append(result, toVehicleResponse(v))
	}
	return result, total, nil
}

func (s *vehicleService) ListByCustomer(ctx context.Context, customerID string) ([]VehicleResponse, error) {
	parsed, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}

	vehicles, err := s.vehicleRepo.ListByCustomer(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	result := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		result = append(result, toVehicleResponse(v))
	}
	return result, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest) (*VehicleResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("vehicle not found: %w", err)
	}

	if req.RegistrationNo != nil {
		vehicle.RegistrationNo = *req.RegistrationNo
	}
	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Mileage != nil {
		vehicle.Mileage = *req.Mileage
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	resp := toVehicleResponse(*vehicle)
	return &resp, nil
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, id string) error {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle id: %w", err)
	}

	if _, err := s.vehicleRepo.FindByID(ctx, vehicleID); err != nil {
		return fmt.Errorf("vehicle not found: %w", err)
	}

	return s.vehicleRepo.Delete(ctx, vehicleID)
}

// --- Mapping ---

func toVehicleResponse(v model.Vehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:             v.ID.String(),
		CustomerID:     v.CustomerID.String(),
		RegistrationNo: v.RegistrationNo,
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		Mileage:        v.Mileage,
		CreatedAt:      v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      v.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if v.Customer != nil {
		resp.CustomerName = v.Customer.Name
	}
	return resp
}
