package service

import (
	"context"
	"fmt"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"` // Permission UUIDs
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id string) error
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest) (*RoleResponse, error)
	SeedDefaultRolesAndPermissions(ctx context.Context) error
}

type roleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) RoleService {
	return &roleService{db: db}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	var roles []model.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	var role model.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", roleID).Error; err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	role := model.Role{
		Name:        req.Name,
		Description: req.Description,
		IsSystem:    false,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		if len(req.Permissions) > 0 {
			var perms []model.Permission
			permIDs := make([]uuid.UUID, 0, len(req.Permissions))
			for _, pid := range req.Permissions {
				parsed, parseErr := uuid.Parse(pid)
				if parseErr != nil {
					return fmt.Errorf("invalid permission id '%s': %w", pid, parseErr)
				}
				permIDs = append(permIDs, parsed)
			}
			if err := tx.Where("id IN ?", permIDs).Find(&perms).Error; err != nil {
				return fmt.Errorf("failed to fetch permissions: %w", err)
			}
			if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return fmt.Errorf("failed to assign permissions: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return s.GetRole(ctx, role.ID.String())
}

func (s *roleService) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	role.Name = req.Name
	role.Description = req.Description

	if err := s.db.WithContext(ctx).Save(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	return s.GetRole(ctx, id)
}

func (s *roleService) DeleteRole(ctx context.Context, id string) error {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}

	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		return fmt.Errorf("role not found: %w", err)
	}

	if role.IsSystem {
		return fmt.Errorf("cannot delete system role '%s'", role.Name)
	}

	// Clear associations before deleting
	if err := s.db.WithContext(ctx).Model(&role).Association("Permissions").Clear(); err != nil {
		return fmt.Errorf("failed to clear permissions: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&role).Error; err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	return nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	var perms []model.Permission
	if err := s.db.WithContext(ctx).Order("\"group\" ASC, code ASC").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func (s *roleService) UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest) (*RoleResponse, error) {
	parsed, err := uuid.Parse(roleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", parsed).Error; err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	permIDs := make([]uuid.UUID, 0, len(req.PermissionIDs))
	for _, pid := range req.PermissionIDs {
		parsedPerm, parseErr := uuid.Parse(pid)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid permission id '%s': %w", pid, parseErr)
		}
		permIDs = append(permIDs, parsedPerm)
	}

	var perms []model.Permission
	if len(permIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", permIDs).Find(&perms).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch permissions: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).Model(&role).Association("Permissions").Replace(perms); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}

	return s.GetRole(ctx, roleID)
}

// --- Seeding ---

var seedPermissions = []model.Permission{
	{Code: "invoices.read", Name: "View invoices", Group: "invoices"},
	{Code: "invoices.write", Name: "Create and edit invoices", Group: "invoices"},
	{Code: "invoices.delete", Name: "Delete invoices", Group: "invoices"},
	{Code: "customers.read", Name: "View customers", Group: "customers"},
	{Code: "customers.write", Name: "Create and edit customers", Group: "customers"},
	{Code: "customers.delete", Name: "Delete customers", Group: "customers"},
	{Code: "vehicles.read", Name: "View vehicles", Group: "vehicles"},
	{Code: "vehicles.write", Name: "Create and edit vehicles", Group: "vehicles"},
	{Code: "vehicles.delete", Name: "Delete vehicles", Group: "vehicles"},
	{Code: "parts.read", Name: "View parts catalog", Group: "parts"},
	{Code: "parts.write", Name: "Create and edit parts", Group: "parts"},
	{Code: "parts.delete", Name: "Delete parts", Group: "parts"},
	{Code: "users.read", Name: "View users", Group: "users"},
	{Code: "users.write", Name: "Create and edit users", Group: "users"},
	{Code: "users.delete", Name: "Delete users", Group: "users"},
	{Code: "roles.read", Name: "View roles", Group: "roles"},
	{Code: "roles.write", Name: "Manage roles", Group: "roles"},
	{Code: "roles.delete", Name: "Delete roles", Group: "roles"},
	{Code: "reports.read", Name: "View reports", Group: "reports"},
	{Code: "audit.read", Name: "View audit trail", Group: "audit"},
}

var seedRolePermissions = map[string][]string{
	"admin": {"*"},
	"manager": {
		"invoices.read", "invoices.write", "invoices.delete",
		"customers.read", "customers.write", "customers.delete",
		"vehicles.read", "vehicles.write", "vehicles.delete",
		"parts.read", "parts.write", "parts.delete",
		"users.read", "reports.read", "audit.read",
	},
	"mechanic": {
		"invoices.read", "customers.read", "vehicles.read", "parts.read",
	},
	"receptionist": {
		"invoices.read", "invoices.write",
		"customers.read", "customers.write",
		"vehicles.read", "vehicles.write",
		"parts.read",
	},
}

// SeedDefaultRolesAndPermissions inserts missing permission codes and the four
// built-in roles. Safe to call on every startup.
func (s *roleService) SeedDefaultRolesAndPermissions(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byCode := make(map[string]model.Permission, len(seedPermissions))
		for _, p := range seedPermissions {
			var existing model.Permission
			err := tx.Where("code = ?", p.Code).First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				existing = p
				if createErr := tx.Create(&existing).Error; createErr != nil {
					return fmt.Errorf("failed to seed permission %s: %w", p.Code, createErr)
				}
			} else if err != nil {
				return err
			}
			byCode[existing.Code] = existing
		}

		for name, codes := range seedRolePermissions {
			var role model.Role
			err := tx.Where("name = ?", name).First(&role).Error
			if err == gorm.ErrRecordNotFound {
				role = model.Role{Name: name, Description: "Built-in " + name + " role", IsSystem: true}
				if createErr := tx.Create(&role).Error; createErr != nil {
					return fmt.Errorf("failed to seed role %s: %w", name, createErr)
				}
			} else if err != nil {
				return err
			}

			var perms []model.Permission
			if len(codes) == 1 && codes[0] == "*" {
				for _, p := range byCode {
					perms = append(perms, p)
				}
			} else {
				for _, code := range codes {
					if p, ok := byCode[code]; ok {
						perms = append(perms, p)
					}
				}
			}

			if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return fmt.Errorf("failed to assign permissions to role %s: %w", name, err)
			}
		}

		return nil
	})
}

// --- Mapping ---

func toPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{
		ID:    p.ID.String(),
		Code:  p.Code,
		Name:  p.Name,
		Group: p.Group,
	}
}

func toRoleResponse(r model.Role) RoleResponse {
	resp := RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: make([]PermissionResponse, 0, len(r.Permissions)),
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, p := range r.Permissions {
		resp.Permissions = append(resp.Permissions, toPermissionResponse(p))
	}
	return resp
}
