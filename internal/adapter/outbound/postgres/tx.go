package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/calshare/server/internal/port/outbound"
)

// txKey carries the open *gorm.DB transaction on the context.
type txKey struct{}

// conn returns the transaction on ctx, or the root handle.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// TransactionAdapter implements outbound.TransactionPort.
type TransactionAdapter struct {
	db *gorm.DB
}

// NewTransactionAdapter creates a new transaction adapter.
func NewTransactionAdapter(db *gorm.DB) *TransactionAdapter {
	return &TransactionAdapter{db: db}
}

// RunInTransaction executes fn within a transaction. A call made while a
// transaction is already open on ctx joins it.
func (a *TransactionAdapter) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// notFound maps gorm's missing-row error onto the port sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return outbound.ErrRecordNotFound
	}
	return err
}

// versioned runs a compare-and-swap update on an aggregate row. Zero
// affected rows means another writer got there first.
func versioned(ctx context.Context, db *gorm.DB, table any, id any, version *int64, fields map[string]any) error {
	fields["version"] = *version + 1
	res := conn(ctx, db).Model(table).
		Where("id = ? AND version = ?", id, *version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return outbound.ErrVersionConflict
	}
	*version++
	return nil
}

var _ outbound.TransactionPort = (*TransactionAdapter)(nil)
