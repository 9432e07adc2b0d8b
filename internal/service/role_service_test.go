package service

import (
	"testing"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultRolesAndPermissions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)

	require.NoError(t, svc.SeedDefaultRolesAndPermissions(testCtx))

	assert.EqualValues(t, len(seedPermissions), countRows(t, db, &model.Permission{}))
	assert.EqualValues(t, 4, countRows(t, db, &model.Role{}))

	roles, err := svc.ListRoles(testCtx)
	require.NoError(t, err)

	byName := make(map[string]RoleResponse, len(roles))
	for _, r := range roles {
		byName[r.Name] = r
	}

	admin := byName["admin"]
	assert.True(t, admin.IsSystem)
	assert.Len(t, admin.Permissions, len(seedPermissions))

	mechanic := byName["mechanic"]
	assert.Len(t, mechanic.Permissions, 4)
}

// Every permission the route table guards with must exist after seeding, and
// the admin wildcard must cover it. roles.delete is the one with no other
// grantee, so check it explicitly.
func TestSeedCoversRoleDeletionGrant(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	require.NoError(t, svc.SeedDefaultRolesAndPermissions(testCtx))

	assert.EqualValues(t, 1, countRowsWhere(t, db, &model.Permission{}, "code = ?", "roles.delete"))

	roles, err := svc.ListRoles(testCtx)
	require.NoError(t, err)
	for _, r := range roles {
		if r.Name != "admin" {
			continue
		}
		codes := make([]string, 0, len(r.Permissions))
		for _, p := range r.Permissions {
			codes = append(codes, p.Code)
		}
		assert.Contains(t, codes, "roles.delete")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)

	require.NoError(t, svc.SeedDefaultRolesAndPermissions(testCtx))
	require.NoError(t, svc.SeedDefaultRolesAndPermissions(testCtx))

	assert.EqualValues(t, len(seedPermissions), countRows(t, db, &model.Permission{}))
	assert.EqualValues(t, 4, countRows(t, db, &model.Role{}))
}

func TestCreateAndDeleteCustomRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	require.NoError(t, svc.SeedDefaultRolesAndPermissions(testCtx))

	created, err := svc.CreateRole(testCtx, CreateRoleRequest{
		Name:        "auditor",
		Description: "Read-only audit access",
	})
	require.NoError(t, err)
	assert.False(t, created.IsSystem)

	require.NoError(t, svc.DeleteRole(testCtx, created.ID))

	_, err = svc.GetRole(testCtx, created.ID)
	require.Error(t, err)
}

func TestDeleteSystemRoleRefused(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	require.NoError(t, svc.SeedDefaultRolesAndPermissions(testCtx))

	roles, err := svc.ListRoles(testCtx)
	require.NoError(t, err)

	for _, r := range roles {
		if r.Name == "admin" {
			err = svc.DeleteRole(testCtx, r.ID)
			require.Error(t, err)
		}
	}
}

func TestUpdateRolePermissionsReplacesSet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	require.NoError(t, svc.SeedDefaultRolesAndPermissions(testCtx))

	created, err := svc.CreateRole(testCtx, CreateRoleRequest{Name: "parts-clerk"})
	require.NoError(t, err)

	perms, err := svc.ListPermissions(testCtx)
	require.NoError(t, err)

	var partsRead string
	for _, p := range perms {
		if p.Code == "parts.read" {
			partsRead = p.ID
		}
	}
	require.NotEmpty(t, partsRead)

	updated, err := svc.UpdateRolePermissions(testCtx, created.ID, UpdateRolePermissionsRequest{
		PermissionIDs: []string{partsRead},
	})
	require.NoError(t, err)
	require.Len(t, updated.Permissions, 1)
	assert.Equal(t, "parts.read", updated.Permissions[0].Code)

	// replacing with an empty set clears all grants
	cleared, err := svc.UpdateRolePermissions(testCtx, created.ID, UpdateRolePermissionsRequest{})
	require.NoError(t, err)
	assert.Empty(t, cleared.Permissions)
}
