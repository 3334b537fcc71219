package visit

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/audit"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
)

type mockRepo struct {
	visits        map[int64]*Visit
	prescriptions []*Prescription
	nextID        int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{visits: map[int64]*Visit{}, nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, v *Visit) error {
	v.ID = m.nextID
	m.nextID++
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	m.visits[v.ID] = v
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Visit, error) {
	v, ok := m.visits[id]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID, orgID int64) ([]*Visit, error) {
	var out []*Visit
	for _, v := range m.visits {
		if v.PatientID == patientID && v.OrganizationID == orgID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockRepo) scoped(id, patientID, orgID int64) *Visit {
	v, ok := m.visits[id]
	if !ok || v.PatientID != patientID || v.OrganizationID != orgID {
		return nil
	}
	return v
}

func (m *mockRepo) Update(_ context.Context, id, patientID, orgID int64, p Patch) (int64, error) {
	v := m.scoped(id, patientID, orgID)
	if v == nil {
		return 0, nil
	}
	if p.VisitDate != nil {
		v.VisitDate = *p.VisitDate
	}
	if p.Complaint != nil {
		v.Complaint = *p.Complaint
	}
	if p.Diagnosis != nil {
		v.Diagnosis = p.Diagnosis
	}
	if p.Treatment != nil {
		v.Treatment = p.Treatment
	}
	if p.Notes != nil {
		v.Notes = p.Notes
	}
	if p.HeartRateSet {
		v.HeartRate = p.HeartRate
	}
	if p.TemperatureSet {
		v.Temperature = p.Temperature
	}
	if p.WeightSet {
		v.Weight = p.Weight
	}
	if p.FollowUpDateSet {
		v.FollowUpDate = p.FollowUpDate
	}
	return 1, nil
}

func (m *mockRepo) Finalize(_ context.Context, id, patientID, orgID int64) (int64, error) {
	v := m.scoped(id, patientID, orgID)
	if v == nil {
		return 0, nil
	}
	v.Status = StatusFinal
	return 1, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Visit, int, error) {
	var out []*Visit
	for _, v := range m.visits {
		if v.OrganizationID != f.OrgID {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.PatientID != 0 && v.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != 0 && v.DoctorID != f.DoctorID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockRepo) PrescriptionsByVisit(_ context.Context, visitID, orgID int64) ([]*Prescription, error) {
	var out []*Prescription
	for _, p := range m.prescriptions {
		if p.VisitID == visitID && p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAudit struct {
	entries []*audit.Entry
}

func (m *mockAudit) Record(_ context.Context, e *audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAudit) CountCompletedToday(_ context.Context) (int, error) {
	return len(m.entries), nil
}

func doctorIdentity(userID, orgID int64) auth.Identity {
	return auth.Identity{UserID: userID, OrgID: orgID, Role: auth.RoleDoctor}
}

func TestServiceCreateInjectsScope(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockAudit{})

	// Scenario: doctor 12 in org 5 records a fever visit for patient 7.
	v := &Visit{Complaint: "fever", PatientID: 999, DoctorID: 999, OrganizationID: 999}
	if err := svc.Create(context.Background(), doctorIdentity(12, 5), 7, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.PatientID != 7 || v.DoctorID != 12 || v.OrganizationID != 5 {
		t.Errorf("scope injection failed: %+v", v)
	}
	if v.Status != StatusDraft {
		t.Errorf("status = %q, want draft", v.Status)
	}
	if v.HeartRate != nil {
		t.Error("heartRate should be absent")
	}
	if v.VisitDate.IsZero() {
		t.Error("visitDate should default to now")
	}
}

func TestServiceGetPatientMismatchIsNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockAudit{})
	ctx := context.Background()

	v := &Visit{Complaint: "checkup"}
	svc.Create(ctx, doctorIdentity(12, 5), 7, v)

	if _, err := svc.Get(ctx, doctorIdentity(12, 5), 7, v.ID); err != nil {
		t.Fatalf("same patient read failed: %v", err)
	}
	_, err := svc.Get(ctx, doctorIdentity(12, 5), 8, v.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("patient mismatch should be not found, got %v", err)
	}
	_, err = svc.Get(ctx, doctorIdentity(3, 9), 7, v.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant read should be not found, got %v", err)
	}
}

func TestServiceFinalize(t *testing.T) {
	repo := newMockRepo()
	ad := &mockAudit{}
	svc := NewService(repo, ad)
	ctx := context.Background()

	v := &Visit{Complaint: "checkup"}
	svc.Create(ctx, doctorIdentity(12, 5), 7, v)

	// Cross-tenant finalize: 404 shape, status untouched.
	err := svc.Finalize(ctx, doctorIdentity(3, 9), 7, v.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant finalize should be not found, got %v", err)
	}
	if repo.visits[v.ID].Status != StatusDraft {
		t.Error("cross-tenant finalize must not change status")
	}

	if err := svc.Finalize(ctx, doctorIdentity(12, 5), 7, v.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.visits[v.ID].Status != StatusFinal {
		t.Errorf("status = %q, want final", repo.visits[v.ID].Status)
	}
	if len(ad.entries) != 1 || ad.entries[0].Action != audit.ActionVisitFinal {
		t.Errorf("audit entries = %+v", ad.entries)
	}
}

func TestServiceUpdateClearsVitals(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockAudit{})
	ctx := context.Background()

	hr := 80
	v := &Visit{Complaint: "checkup", HeartRate: &hr}
	svc.Create(ctx, doctorIdentity(12, 5), 7, v)

	// Set flag without a value clears to NULL.
	if err := svc.Update(ctx, doctorIdentity(12, 5), 7, v.ID, Patch{HeartRateSet: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.visits[v.ID].HeartRate != nil {
		t.Error("heartRate should be cleared")
	}
}

func TestServiceListScopedAndOrdered(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockAudit{})
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		v := &Visit{Complaint: "c", VisitDate: base.Add(time.Duration(i) * time.Hour)}
		svc.Create(ctx, doctorIdentity(12, 5), 7, v)
	}
	other := &Visit{Complaint: "other org"}
	svc.Create(ctx, doctorIdentity(3, 9), 7, other)

	visits, total, err := svc.List(ctx, doctorIdentity(12, 5), Filter{}, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	for i := 1; i < len(visits); i++ {
		if visits[i].VisitDate.After(visits[i-1].VisitDate) {
			t.Error("visits not in descending visit-date order")
		}
	}
}

func TestServicePrescriptionsOrgScoped(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockAudit{})
	ctx := context.Background()

	v := &Visit{Complaint: "c"}
	svc.Create(ctx, doctorIdentity(12, 5), 7, v)
	repo.prescriptions = []*Prescription{
		{ID: 1, VisitID: v.ID, PatientID: 7, OrganizationID: 5, Medication: "amoxicillin", Dosage: "500mg", Frequency: "tid"},
		{ID: 2, VisitID: v.ID, PatientID: 7, OrganizationID: 9, Medication: "leak", Dosage: "x", Frequency: "x"},
	}

	got, err := svc.Prescriptions(ctx, doctorIdentity(12, 5), v.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Medication != "amoxicillin" {
		t.Errorf("prescriptions = %+v", got)
	}
}
