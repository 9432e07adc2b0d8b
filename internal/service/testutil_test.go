package service

import (
	"context"
	"testing"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// invoiceTestDeps bundles everything needed to exercise the invoice lifecycle
type invoiceTestDeps struct {
	db          *gorm.DB
	invoiceRepo repository.InvoiceRepository
	partRepo    repository.PartRepository
	service     InvoiceService
}

func newInvoiceTestDeps(t *testing.T, db *gorm.DB) invoiceTestDeps {
	t.Helper()
	invoiceRepo := repository.NewInvoiceRepository(db)
	partRepo := repository.NewPartRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	partSvc := NewPartService(partRepo, auditRepo)
	svc := NewInvoiceService(
		invoiceRepo,
		repository.NewCustomerRepository(db),
		repository.NewVehicleRepository(db),
		auditRepo,
		partSvc,
		repository.NewTransactionManager(db),
		nil,
	)
	return invoiceTestDeps{db: db, invoiceRepo: invoiceRepo, partRepo: partRepo, service: svc}
}

func seedCustomerWithVehicle(t *testing.T, db *gorm.DB) (model.Customer, model.Vehicle) {
	t.Helper()
	customer := model.Customer{Name: "Nguyen Van A", Phone: "0901234567", IsActive: true}
	require.NoError(t, db.Create(&customer).Error)

	vehicle := model.Vehicle{
		CustomerID:     customer.ID,
		RegistrationNo: "51A-123.45",
		Make:           "Toyota",
		Model:          "Vios",
		Year:           2019,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return customer, vehicle
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func countRowsWhere(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

var testCtx = context.Background()
