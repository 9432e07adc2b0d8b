package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "11111111-1111-1111-1111-111111111111",
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func TestGetJWTSecretRequiredInReleaseMode(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")

	assert.Panics(t, func() { GetJWTSecret() })

	t.Setenv("JWT_SECRET", "release-secret")
	assert.Equal(t, []byte("release-secret"), GetJWTSecret())
}

func newProtectedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireRoleMissingToken(t *testing.T) {
	r := newProtectedRouter(RequireRole("admin"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRoleMalformedHeader(t *testing.T) {
	r := newProtectedRouter(RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	r := newProtectedRouter(RequireRole("admin", "manager"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "manager"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	r := newProtectedRouter(RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "mechanic"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireRoleAcceptsCookie(t *testing.T) {
	r := newProtectedRouter(RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, "admin")})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func setupPermDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Role{}, &model.Permission{}))

	perm := model.Permission{Code: "invoices.read", Name: "View invoices", Group: "invoices"}
	require.NoError(t, db.Create(&perm).Error)
	role := model.Role{Name: "mechanic", IsSystem: true, Permissions: []model.Permission{perm}}
	require.NoError(t, db.Create(&role).Error)

	InitPermissionMiddleware(db)
	ClearPermissionCache("")
	t.Cleanup(func() { ClearPermissionCache("") })
	return db
}

func TestRequirePermissionGrantedByRole(t *testing.T) {
	setupPermDB(t)
	r := newProtectedRouter(RequirePermission("invoices.read"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "mechanic"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequirePermissionDeniedWhenMissing(t *testing.T) {
	setupPermDB(t)
	r := newProtectedRouter(RequirePermission("invoices.delete"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "mechanic"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestClearPermissionCachePicksUpNewGrants(t *testing.T) {
	db := setupPermDB(t)
	r := newProtectedRouter(RequirePermission("invoices.write"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "mechanic"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	// grant the permission and invalidate the cache
	perm := model.Permission{Code: "invoices.write", Name: "Create invoices", Group: "invoices"}
	require.NoError(t, db.Create(&perm).Error)
	var role model.Role
	require.NoError(t, db.Where("name = ?", "mechanic").First(&role).Error)
	require.NoError(t, db.Model(&role).Association("Permissions").Append(&perm))
	ClearPermissionCache("mechanic")

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "mechanic"))
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
