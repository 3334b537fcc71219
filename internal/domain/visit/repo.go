package visit

import (
	"context"
	"errors"
)

// ErrNotFound covers a missing visit and, for scoped updates, any
// patient/organization mismatch. Cross-tenant writes are deliberately
// indistinguishable from absence.
var ErrNotFound = errors.New("visit not found")

type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id int64) (*Visit, error)
	ListByPatient(ctx context.Context, patientID, orgID int64) ([]*Visit, error)
	// Update applies the patch scoped to (id, patientID, orgID) and
	// returns the number of rows updated.
	Update(ctx context.Context, id, patientID, orgID int64, p Patch) (int64, error)
	// Finalize flips status to final under the same triple scoping.
	Finalize(ctx context.Context, id, patientID, orgID int64) (int64, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error)
	// PrescriptionsByVisit joins through visits so only rows from the
	// caller's organization come back.
	PrescriptionsByVisit(ctx context.Context, visitID, orgID int64) ([]*Prescription, error)
}
