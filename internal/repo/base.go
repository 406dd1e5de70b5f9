package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Base is embedded by gorm-backed repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// FirstWhere loads the first row of query into dest. A missing row reports
// found=false with a nil error so callers decide whether absence is an error.
func (b Base) FirstWhere(ctx context.Context, dest any, query *gorm.DB) (found bool, err error) {
	if query == nil {
		query = b.DB(ctx)
	}
	err = query.First(dest).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, err
	}
}
