package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPartTestService(t *testing.T, db *gorm.DB) (PartService, repository.PartRepository) {
	t.Helper()
	partRepo := repository.NewPartRepository(db)
	return NewPartService(partRepo, repository.NewAuditRepository(db)), partRepo
}

func TestResolveCreatesMissingEntry(t *testing.T) {
	db := setupTestDB(t)
	svc, partRepo := newPartTestService(t, db)

	id := svc.Resolve(testCtx, "Spark plug", "Ignition", dec("7.50"), "Pc")
	require.NotNil(t, id)

	part, err := partRepo.FindByID(testCtx, *id)
	require.NoError(t, err)
	assert.Equal(t, "Spark plug", part.Name)
	assert.Equal(t, "Ignition", part.Category)
	assert.Equal(t, "Pc", part.Unit)
	assert.True(t, part.Rate.Equal(dec("7.50")))
	assert.True(t, part.IsActive)
}

func TestResolveIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newPartTestService(t, db)

	first := svc.Resolve(testCtx, "Spark plug", "", decimal.Zero, "")
	second := svc.Resolve(testCtx, "spark PLUG", "", decimal.Zero, "")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.EqualValues(t, 1, countRows(t, db, &model.Part{}))
}

func TestResolveIgnoresInactiveParts(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newPartTestService(t, db)

	retired := model.Part{Name: "Timing belt", IsActive: false}
	require.NoError(t, db.Create(&retired).Error)

	id := svc.Resolve(testCtx, "Timing belt", "", decimal.Zero, "")
	require.NotNil(t, id)
	assert.NotEqual(t, retired.ID, *id)
}

// A column default would make gorm drop the false value on insert, silently
// reactivating the part. The flag has to round-trip as written.
func TestInactiveFlagPersistsOnCreate(t *testing.T) {
	db := setupTestDB(t)

	retired := model.Part{Name: "Head gasket", IsActive: false}
	require.NoError(t, db.Create(&retired).Error)

	var loaded model.Part
	require.NoError(t, db.First(&loaded, "id = ?", retired.ID).Error)
	assert.False(t, loaded.IsActive)
}

func TestResolvePrefersOldestOnDuplicateNames(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newPartTestService(t, db)

	older := model.Part{Name: "Coolant", IsActive: true}
	require.NoError(t, db.Create(&older).Error)
	newer := model.Part{Name: "coolant", IsActive: true}
	require.NoError(t, db.Exec(
		"UPDATE parts SET created_at = datetime('now', '-1 day') WHERE id = ?", older.ID,
	).Error)
	require.NoError(t, db.Create(&newer).Error)

	id := svc.Resolve(testCtx, "COOLANT", "", decimal.Zero, "")
	require.NotNil(t, id)
	assert.Equal(t, older.ID, *id)
}

// brokenPartRepo simulates storage failure during catalog lookups
type brokenPartRepo struct {
	repository.PartRepository
}

func (r *brokenPartRepo) FindActiveByName(ctx context.Context, name string) (*model.Part, error) {
	return nil, errors.New("simulated storage failure")
}

func TestResolveSoftFailsOnStorageError(t *testing.T) {
	db := setupTestDB(t)
	partRepo := &brokenPartRepo{repository.NewPartRepository(db)}
	svc := NewPartService(partRepo, repository.NewAuditRepository(db))

	id := svc.Resolve(testCtx, "Clutch kit", "", decimal.Zero, "")
	assert.Nil(t, id)
	assert.EqualValues(t, 0, countRows(t, db, &model.Part{}))
}

func TestCreatePartDefaultsAndAudit(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newPartTestService(t, db)

	caller := uuid.NewString()
	resp, err := svc.CreatePart(testCtx, caller, CreatePartRequest{Name: "Radiator", Rate: "120"})
	require.NoError(t, err)
	assert.Equal(t, DefaultItemCategory, resp.Category)
	assert.Equal(t, DefaultItemUnit, resp.Unit)
	assert.Equal(t, "120.00", resp.Rate)
	assert.True(t, resp.IsActive)

	var entry model.AuditLog
	require.NoError(t, db.Where("action = ?", model.ActionCreatePart).First(&entry).Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, caller, entry.UserID.String())
}

func TestCreatePartRejectsInvalidRate(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newPartTestService(t, db)

	_, err := svc.CreatePart(testCtx, "", CreatePartRequest{Name: "Radiator", Rate: "lots"})
	require.Error(t, err)
}

func TestUpdatePartDeactivation(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newPartTestService(t, db)

	created, err := svc.CreatePart(testCtx, "", CreatePartRequest{Name: "Fan belt"})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdatePart(testCtx, "", created.ID, UpdatePartRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// a deactivated part no longer participates in resolution
	id := svc.Resolve(testCtx, "Fan belt", "", decimal.Zero, "")
	require.NotNil(t, id)
	assert.NotEqual(t, created.ID, id.String())
}
