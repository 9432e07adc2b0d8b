package database

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The schema must migrate on sqlite as well as postgres, so model tags may not
// rely on postgres-only defaults like gen_random_uuid().
func TestMigrateOnSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	customer := model.Customer{Name: "Tran Thi B", IsActive: true}
	require.NoError(t, db.Create(&customer).Error)
	assert.NotEqual(t, uuid.Nil, customer.ID)

	var loaded model.Customer
	require.NoError(t, db.First(&loaded, "id = ?", customer.ID).Error)
	assert.Equal(t, "Tran Thi B", loaded.Name)
}
