package repository

import (
	"context"
	"strings"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleRepository defines data access for Vehicle entities
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Vehicle, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Vehicle, int64, error)
	Update(ctx context.Context, vehicle *model.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return GetDB(ctx, r.db).Create(vehicle).Error
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := GetDB(ctx, r.db).Preload("Customer").First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	if err := GetDB(ctx, r.db).Where("customer_id = ?", customerID).Order("created_at desc").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *vehicleRepository) List(ctx context.Context, search string, page, limit int) ([]model.Vehicle, int64, error) {
	var vehicles []model.Vehicle
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Vehicle{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(registration_no) LIKE ? OR LOWER(make) LIKE ? OR LOWER(model) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Customer").Order("created_at desc").Offset(offset).Limit(limit).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}

	return vehicles, total, nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) error {
	return GetDB(ctx, r.db).Save(vehicle).Error
}

func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Vehicle{}, "id = ?", id).Error
}
