package service

import (
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCustomerTestService(t *testing.T, db *gorm.DB) CustomerService {
	t.Helper()
	return NewCustomerService(repository.NewCustomerRepository(db), repository.NewAuditRepository(db))
}

func newVehicleTestService(t *testing.T, db *gorm.DB) VehicleService {
	t.Helper()
	return NewVehicleService(repository.NewVehicleRepository(db), repository.NewCustomerRepository(db))
}

func TestCreateCustomerAndLookup(t *testing.T) {
	db := setupTestDB(t)
	svc := newCustomerTestService(t, db)

	created, err := svc.CreateCustomer(testCtx, "", CreateCustomerRequest{
		Name:  "Le Van C",
		Phone: "0987654321",
		Email: "levanc@example.com",
	})
	require.NoError(t, err)

	found, err := svc.GetCustomer(testCtx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Le Van C", found.Name)
}

func TestCreateCustomerRejectsBadEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newCustomerTestService(t, db)

	_, err := svc.CreateCustomer(testCtx, "", CreateCustomerRequest{
		Name:  "Le Van C",
		Email: "not-an-email",
	})
	require.Error(t, err)
}

func TestListCustomersSearch(t *testing.T) {
	db := setupTestDB(t)
	svc := newCustomerTestService(t, db)

	for _, name := range []string{"Nguyen An", "Nguyen Binh", "Tran Cuc"} {
		_, err := svc.CreateCustomer(testCtx, "", CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}

	matches, total, err := svc.ListCustomers(testCtx, "nguyen", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, matches, 2)
}

func TestDeleteCustomerIsSoft(t *testing.T) {
	db := setupTestDB(t)
	svc := newCustomerTestService(t, db)

	created, err := svc.CreateCustomer(testCtx, "", CreateCustomerRequest{Name: "Pham Dung"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(testCtx, "", created.ID))

	_, err = svc.GetCustomer(testCtx, created.ID)
	require.Error(t, err)

	// soft deleted, row still present with deleted_at set
	var n int64
	require.NoError(t, db.Unscoped().Model(&model.Customer{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreateVehicleRequiresExistingCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := newVehicleTestService(t, db)

	_, err := svc.CreateVehicle(testCtx, CreateVehicleRequest{
		CustomerID:     "3b1c8f0a-0000-0000-0000-000000000000",
		RegistrationNo: "51A-000.00",
	})
	require.Error(t, err)
}

func TestListByCustomerOnlyReturnsOwnVehicles(t *testing.T) {
	db := setupTestDB(t)
	vehicleSvc := newVehicleTestService(t, db)
	customer, vehicle := seedCustomerWithVehicle(t, db)

	other := model.Customer{Name: "Someone Else", IsActive: true}
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&model.Vehicle{CustomerID: other.ID, RegistrationNo: "60C-111.22"}).Error)

	vehicles, err := vehicleSvc.ListByCustomer(testCtx, customer.ID.String())
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, vehicle.RegistrationNo, vehicles[0].RegistrationNo)
}

func TestUpdateVehicleMileage(t *testing.T) {
	db := setupTestDB(t)
	svc := newVehicleTestService(t, db)
	_, vehicle := seedCustomerWithVehicle(t, db)

	mileage := int64(123456)
	updated, err := svc.UpdateVehicle(testCtx, vehicle.ID.String(), UpdateVehicleRequest{Mileage: &mileage})
	require.NoError(t, err)
	assert.EqualValues(t, 123456, updated.Mileage)
	assert.Equal(t, vehicle.RegistrationNo, updated.RegistrationNo)
}
