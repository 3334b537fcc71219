package referral

import (
	"context"
	"errors"
)

// ErrNotFound reports a referral that does not exist (or, for scoped
// updates and deletes, one the caller's organization cannot see).
var ErrNotFound = errors.New("referral not found")

type Repository interface {
	Create(ctx context.Context, r *Referral) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Referral, int, error)
	// GetByID fetches by primary key without tenant scoping; the service
	// applies the cross-tenant check so it can distinguish 403 from 404.
	GetByID(ctx context.Context, id int64) (*Referral, error)
	// Update applies the patch scoped to (id, orgID) and returns the
	// number of rows updated.
	Update(ctx context.Context, id, orgID int64, p Patch) (int64, error)
	Delete(ctx context.Context, id, orgID int64) (int64, error)
}
