package services

import (
	"context"
	"fmt"

	"agora/internal/apperr"
	"agora/internal/logger"

	"gorm.io/gorm"
)

// base carries what every service needs: the pool for opening units of work
// and a scoped logger.
type base struct {
	db  *gorm.DB
	log *logger.Logger
}

func newBase(db *gorm.DB, baseLog *logger.Logger, name string) base {
	return base{db: db, log: baseLog.With("service", name)}
}

// inTx runs fn as one unit of work. Nothing fn wrote is visible if it fails.
func (b *base) inTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	b.log.Debug(op)
	return b.fail(op, b.db.WithContext(ctx).Transaction(fn))
}

// fail passes business errors through and turns anything else into
// ErrOperationFailed, keeping the cause for diagnostics.
func (b *base) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.IsBusiness(err) {
		return err
	}
	b.log.Error("Operation failed", "op", op, "error", err)
	return apperr.New(op, apperr.ErrOperationFailed, err)
}

func notFound(op, what string, id uint) error {
	return apperr.New(op, apperr.ErrNotFound, fmt.Errorf("%s %d", what, id))
}
