package repository

import (
	"context"

	"gorm.io/gorm"
)

type txCtxKey struct{}

// TransactionManager runs a function with every repository call inside one
// database transaction. The handle travels through the context, so repository
// implementations never know whether a transaction is active.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txCtxKey{}, tx))
	})
}

// GetDB returns the active transaction carried by ctx, or root when the call
// is not inside RunInTx.
func GetDB(ctx context.Context, root *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txCtxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return root.WithContext(ctx)
}
