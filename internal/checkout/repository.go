package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/repo"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/db"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

// Repository persists checkout attempts.
type Repository interface {
	Create(ctx context.Context, attempt *Attempt) error
	FindByID(ctx context.Context, id uuid.UUID, userID string) (*Attempt, error)
	FindOpenByUser(ctx context.Context, userID string) (*Attempt, error)
	Save(ctx context.Context, attempt *Attempt) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a checkout repository backed by the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	if conn == nil {
		return nil
	}
	return &repository{Base: repo.NewBase(conn)}
}

// Create inserts a new attempt. A second open attempt for the same user is
// rejected with a conflict.
func (r *repository) Create(ctx context.Context, attempt *Attempt) error {
	if err := r.DB(ctx).Create(attempt).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an open checkout already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create checkout attempt")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID, userID string) (*Attempt, error) {
	var attempt Attempt
	found, err := r.FirstWhere(ctx, &attempt, r.DB(ctx).Where("id = ? AND user_id = ?", id, userID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout attempt")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
	}
	return &attempt, nil
}

// FindOpenByUser returns the user's open attempt, or nil when there is none.
func (r *repository) FindOpenByUser(ctx context.Context, userID string) (*Attempt, error) {
	var attempt Attempt
	found, err := r.FirstWhere(ctx, &attempt, r.DB(ctx).
		Where("user_id = ? AND completed_at IS NULL AND abandoned_at IS NULL", userID).
		Order("created_at DESC"))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open checkout attempt")
	}
	if !found {
		return nil, nil
	}
	return &attempt, nil
}

func (r *repository) Save(ctx context.Context, attempt *Attempt) error {
	if err := r.DB(ctx).Save(attempt).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save checkout attempt")
	}
	return nil
}
