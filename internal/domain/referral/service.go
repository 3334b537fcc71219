package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
)

// ErrForbidden reports a read of a referral outside the caller's
// organization. Reads distinguish cross-tenant access from absence;
// updates and deletes report both uniformly as not found.
var ErrForbidden = errors.New("referral belongs to another organization")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a referral for the caller's organization. The
// organization and originating user always come from the identity; any
// values in the request body for those fields are discarded.
func (s *Service) Create(ctx context.Context, id auth.Identity, ref *Referral) error {
	ref.OrganizationID = id.OrgID
	ref.FromUserID = id.UserID
	if ref.Status == "" {
		ref.Status = StatusPending
	}
	if err := s.repo.Create(ctx, ref); err != nil {
		return fmt.Errorf("create referral: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, id auth.Identity, f Filter, limit, offset int) ([]*Referral, int, error) {
	f.OrgID = id.OrgID
	return s.repo.List(ctx, f, limit, offset)
}

// Get fetches a referral and enforces tenant scoping uniformly: every
// caller needs an organization context, and a referral from another
// organization yields ErrForbidden rather than leaking through.
func (s *Service) Get(ctx context.Context, id auth.Identity, referralID int64) (*Referral, error) {
	ref, err := s.repo.GetByID(ctx, referralID)
	if err != nil {
		return nil, err
	}
	if ref.OrganizationID != id.OrgID {
		return nil, ErrForbidden
	}
	return ref, nil
}

func (s *Service) Update(ctx context.Context, id auth.Identity, referralID int64, p Patch) error {
	rows, err := s.repo.Update(ctx, referralID, id.OrgID, p)
	if err != nil {
		return fmt.Errorf("update referral %d: %w", referralID, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id auth.Identity, referralID int64) error {
	rows, err := s.repo.Delete(ctx, referralID, id.OrgID)
	if err != nil {
		return fmt.Errorf("delete referral %d: %w", referralID, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
