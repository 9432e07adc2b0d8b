package database

import (
	"backend/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		logrus.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}

// Migrate applies the schema for all core models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.Customer{},
		&model.Vehicle{},
		&model.Part{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.AuditLog{},
	)
}
