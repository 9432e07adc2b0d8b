package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"backend/internal/database"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRoleAPI(t *testing.T) apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	roleService := service.NewRoleService(db)
	require.NoError(t, roleService.SeedDefaultRolesAndPermissions(t.Context()))
	middleware.InitPermissionMiddleware(db)
	middleware.ClearPermissionCache("")
	t.Cleanup(func() { middleware.ClearPermissionCache("") })

	router := gin.New()
	NewRoleHandler(roleService).RegisterRoutes(router.Group(""))
	return apiHarness{router: router, db: db}
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "33333333-3333-3333-3333-333333333333",
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func TestDeleteRoleEndpoint(t *testing.T) {
	h := setupRoleAPI(t)
	token := tokenForRole(t, "admin")

	rr := h.do(t, http.MethodPost, "/api/roles", token, gin.H{"name": "night-shift"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		Data service.RoleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = h.do(t, http.MethodDelete, "/api/roles/"+created.Data.ID, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = h.do(t, http.MethodGet, "/api/roles/"+created.Data.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteRoleEndpointForbiddenWithoutGrant(t *testing.T) {
	h := setupRoleAPI(t)

	var role model.Role
	require.NoError(t, h.db.First(&role, "name = ?", "receptionist").Error)

	rr := h.do(t, http.MethodDelete, "/api/roles/"+role.ID.String(), tokenForRole(t, "manager"), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDeleteSystemRoleEndpointRefused(t *testing.T) {
	h := setupRoleAPI(t)

	var role model.Role
	require.NoError(t, h.db.First(&role, "name = ?", "mechanic").Error)

	rr := h.do(t, http.MethodDelete, "/api/roles/"+role.ID.String(), tokenForRole(t, "admin"), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}
