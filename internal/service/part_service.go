package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreatePartRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Rate     string `json:"rate"`
}

type UpdatePartRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
	Rate     *string `json:"rate"`
	IsActive *bool   `json:"is_active"`
}

type PartResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Unit      string `json:"unit"`
	Rate      string `json:"rate"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// --- Interface ---

// PartService manages the parts catalog and resolves invoice line items to
// catalog entries, creating an entry when none matches.
type PartService interface {
	CreatePart(ctx context.Context, callerID string, req CreatePartRequest) (*PartResponse, error)
	GetPart(ctx context.Context, id string) (*PartResponse, error)
	ListParts(ctx context.Context, search string, activeOnly bool, page, limit int) ([]PartResponse, int64, error)
	UpdatePart(ctx context.Context, callerID, id string, req UpdatePartRequest) (*PartResponse, error)
	DeletePart(ctx context.Context, callerID, id string) error

	// Resolve finds the active catalog entry matching description
	// (case-insensitive exact name, oldest wins) or creates one from the
	// fallback fields. Returns nil on failure: the caller proceeds with an
	// unlinked item rather than failing the invoice.
	Resolve(ctx context.Context, description, category string, rate decimal.Decimal, unit string) *uuid.UUID
}

type partService struct {
	partRepo  repository.PartRepository
	auditRepo repository.AuditRepository
}

func NewPartService(partRepo repository.PartRepository, auditRepo repository.AuditRepository) PartService {
	return &partService{partRepo: partRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *partService) CreatePart(ctx context.Context, callerID string, req CreatePartRequest) (*PartResponse, error) {
	rate := decimal.Zero
	if req.Rate != "" {
		parsed, err := decimal.NewFromString(req.Rate)
		if err != nil {
			return nil, fmt.Errorf("invalid rate: %w", err)
		}
		rate = parsed
	}

	part := model.Part{
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Rate:     rate,
		IsActive: true,
	}
	if part.Category == "" {
		part.Category = DefaultItemCategory
	}
	if part.Unit == "" {
		part.Unit = DefaultItemUnit
	}

	if err := s.partRepo.Create(ctx, &part); err != nil {
		return nil, fmt.Errorf("failed to create part: %w", err)
	}

	s.audit(ctx, callerID, model.ActionCreatePart, part.ID.String(), part.Name)

	resp := toPartResponse(part)
	return &resp, nil
}

func (s *partService) GetPart(ctx context.Context, id string) (*PartResponse, error) {
	partID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid part id: %w", err)
	}

	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("part not found: %w", err)
	}

	resp := toPartResponse(*part)
	return &resp, nil
}

func (s *partService) ListParts(ctx context.Context, search string, activeOnly bool, page, limit int) ([]PartResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	parts, total, err := s.partRepo.List(ctx, search, activeOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch parts: %w", err)
	}

	result := make([]PartResponse, 0, len(parts))
	for _, p := range parts {
		result = append(result, toPartResponse(p))
	}
	return result, total, nil
}

func (s *partService) UpdatePart(ctx context.Context, callerID, id string, req UpdatePartRequest) (*PartResponse, error) {
	partID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid part id: %w", err)
	}

	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("part not found: %w", err)
	}

	if req.Name != nil {
		part.Name = *req.Name
	}
	if req.Category != nil {
		part.Category = *req.Category
	}
	if req.Unit != nil {
		part.Unit = *req.Unit
	}
	if req.Rate != nil {
		rate, parseErr := decimal.NewFromString(*req.Rate)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid rate: %w", parseErr)
		}
		part.Rate = rate
	}
	if req.IsActive != nil {
		part.IsActive = *req.IsActive
	}

	if err := s.partRepo.Update(ctx, part); err != nil {
		return nil, fmt.Errorf("failed to update part: %w", err)
	}

	s.audit(ctx, callerID, model.ActionUpdatePart, part.ID.String(), part.Name)

	resp := toPartResponse(*part)
	return &resp, nil
}

func (s *partService) DeletePart(ctx context.Context, callerID, id string) error {
	partID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid part id: %w", err)
	}

	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return fmt.Errorf("part not found: %w", err)
	}

	if err := s.partRepo.Delete(ctx, partID); err != nil {
		return fmt.Errorf("failed to delete part: %w", err)
	}

	s.audit(ctx, callerID, model.ActionDeletePart, id, part.Name)
	return nil
}

func (s *partService) Resolve(ctx context.Context, description, category string, rate decimal.Decimal, unit string) *uuid.UUID {
	part, err := s.partRepo.FindActiveByName(ctx, description)
	if err == nil {
		return &part.ID
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).WithField("description", description).
			Warn("catalog lookup failed, item will be saved unlinked")
		return nil
	}

	created := model.Part{
		Name:     description,
		Category: category,
		Unit:     unit,
		Rate:     rate,
		IsActive: true,
	}
	if created.Category == "" {
		created.Category = DefaultItemCategory
	}
	if created.Unit == "" {
		created.Unit = DefaultItemUnit
	}

	if err := s.partRepo.Create(ctx, &created); err != nil {
		logrus.WithError(err).WithField("description", description).
			Warn("catalog entry creation failed, item will be saved unlinked")
		return nil
	}

	s.audit(ctx, "", model.ActionAutoCreatePart, created.ID.String(), created.Name)
	return &created.ID
}

func (s *partService) audit(ctx context.Context, callerID, action, entityID, entityName string) {
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

func toPartResponse(p model.Part) PartResponse {
	return PartResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		Rate:      p.Rate.StringFixed(2),
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
