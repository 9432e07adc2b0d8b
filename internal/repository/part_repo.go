package repository

import (
	"context"
	"strings"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartRepository defines data access for catalog Part entities
type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error)
	// FindActiveByName matches active parts by case-insensitive exact name.
	// Ties resolve to the oldest entry.
	FindActiveByName(ctx context.Context, name string) (*model.Part, error)
	List(ctx context.Context, search string, activeOnly bool, page, limit int) ([]model.Part, int64, error)
	Update(ctx context.Context, part *model.Part) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type partRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

func (r *partRepository) Create(ctx context.Context, part *model.Part) error {
	return GetDB(ctx, r.db).Create(part).Error
}

func (r *partRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	var part model.Part
	if err := GetDB(ctx, r.db).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) FindActiveByName(ctx context.Context, name string) (*model.Part, error) {
	var part model.Part
	err := GetDB(ctx, r.db).
		Where("LOWER(name) = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(name)), true).
		Order("created_at asc").
		First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) List(ctx context.Context, search string, activeOnly bool, page, limit int) ([]model.Part, int64, error) {
	var parts []model.Part
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Part{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&parts).Error; err != nil {
		return nil, 0, err
	}

	return parts, total, nil
}

func (r *partRepository) Update(ctx context.Context, part *model.Part) error {
	return GetDB(ctx, r.db).Save(part).Error
}

func (r *partRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Part{}, "id = ?", id).Error
}
