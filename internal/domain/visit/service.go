package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/audit"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
)

type Service struct {
	repo  Repository
	audit audit.Repository
}

func NewService(repo Repository, auditRepo audit.Repository) *Service {
	return &Service{repo: repo, audit: auditRepo}
}

// Create persists a draft visit. The patient comes from the URL, the
// doctor is the caller, and the organization is the caller's; none of the
// three can be set from the request body.
func (s *Service) Create(ctx context.Context, id auth.Identity, patientID int64, v *Visit) error {
	v.PatientID = patientID
	v.DoctorID = id.UserID
	v.OrganizationID = id.OrgID
	v.Status = StatusDraft
	if v.VisitDate.IsZero() {
		v.VisitDate = time.Now()
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) ListByPatient(ctx context.Context, id auth.Identity, patientID int64) ([]*Visit, error) {
	return s.repo.ListByPatient(ctx, patientID, id.OrgID)
}

// Get fetches a visit addressed as patient/visit. A visit whose patient
// does not match the URL is reported as not found.
func (s *Service) Get(ctx context.Context, id auth.Identity, patientID, visitID int64) (*Visit, error) {
	v, err := s.repo.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.PatientID != patientID || v.OrganizationID != id.OrgID {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id auth.Identity, patientID, visitID int64, p Patch) error {
	rows, err := s.repo.Update(ctx, visitID, patientID, id.OrgID, p)
	if err != nil {
		return fmt.Errorf("update visit %d: %w", visitID, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Finalize flips the visit to its authoritative final state. A mismatch on
// visit, patient, or organization surfaces as not found and changes
// nothing.
func (s *Service) Finalize(ctx context.Context, id auth.Identity, patientID, visitID int64) error {
	rows, err := s.repo.Finalize(ctx, visitID, patientID, id.OrgID)
	if err != nil {
		return fmt.Errorf("finalize visit %d: %w", visitID, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, &audit.Entry{
			UserID:  id.UserID,
			OrgID:   id.OrgID,
			Action:  audit.ActionVisitFinal,
			Details: fmt.Sprintf("visit %d for patient %d finalized", visitID, patientID),
		})
	}
	return nil
}

func (s *Service) List(ctx context.Context, id auth.Identity, f Filter, limit, offset int) ([]*Visit, int, error) {
	f.OrgID = id.OrgID
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Prescriptions(ctx context.Context, id auth.Identity, visitID int64) ([]*Prescription, error) {
	return s.repo.PrescriptionsByVisit(ctx, visitID, id.OrgID)
}
