package service

import (
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserTestService(t *testing.T, db *gorm.DB) UserService {
	t.Helper()
	return NewUserService(repository.NewUserRepository(db))
}

func createTestUser(t *testing.T, svc UserService) *UserResponse {
	t.Helper()
	user, err := svc.CreateUser(testCtx, CreateUserRequest{
		Username: "mechanic1",
		Email:    "mechanic1@garage.local",
		Password: "s3cret-pass",
		Role:     "mechanic",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserHashesPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	createTestUser(t, svc)

	var stored model.User
	require.NoError(t, db.Where("username = ?", "mechanic1").First(&stored).Error)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
	assert.NotEmpty(t, stored.Password)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)

	_, err := svc.CreateUser(testCtx, CreateUserRequest{
		Username: "x",
		Email:    "x@garage.local",
		Password: "pw",
		Role:     "janitor",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	createTestUser(t, svc)

	_, err := svc.CreateUser(testCtx, CreateUserRequest{
		Username: "mechanic1",
		Email:    "other@garage.local",
		Password: "pw",
		Role:     "mechanic",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")
}

func TestLoginIssuesTokenPair(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	created := createTestUser(t, svc)

	tokens, err := svc.Login(testCtx, LoginUserRequest{
		Email:    "mechanic1@garage.local",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Token)
	require.NotEmpty(t, tokens.RefreshToken)

	parsed, err := jwt.Parse(tokens.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, created.ID.String(), claims["sub"])
	assert.Equal(t, "mechanic", claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	createTestUser(t, svc)

	_, err := svc.Login(testCtx, LoginUserRequest{
		Email:    "mechanic1@garage.local",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	createTestUser(t, svc)

	tokens, err := svc.Login(testCtx, LoginUserRequest{
		Email:    "mechanic1@garage.local",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(testCtx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// the consumed token must not work a second time
	_, err = svc.RefreshToken(testCtx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.Error(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	createTestUser(t, svc)

	tokens, err := svc.Login(testCtx, LoginUserRequest{
		Email:    "mechanic1@garage.local",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(testCtx, tokens.RefreshToken))

	_, err = svc.RefreshToken(testCtx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.Error(t, err)
}

func TestUpdateUserChangesRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	created := createTestUser(t, svc)

	updated, err := svc.UpdateUser(testCtx, created.ID.String(), UpdateUserRequest{Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, "manager", updated.Role)
}

func TestDeleteUserThenLookupFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserTestService(t, db)
	created := createTestUser(t, svc)

	require.NoError(t, svc.DeleteUser(testCtx, created.ID.String()))

	_, err := svc.GetUserByID(testCtx, created.ID.String())
	require.Error(t, err)
}
