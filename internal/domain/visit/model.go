package visit

import "time"

// Visit statuses. A visit starts as a draft and is finalized exactly once;
// nothing below the status flag enforces immutability after that.
const (
	StatusDraft = "draft"
	StatusFinal = "final"
)

// Visit is one clinical encounter. Clients speak `chiefComplaint` and
// `treatmentPlan` on the wire; the persisted and returned names are
// `complaint` and `treatment`.
type Visit struct {
	ID             int64      `db:"id" json:"id"`
	PatientID      int64      `db:"patient_id" json:"patientId"`
	DoctorID       int64      `db:"doctor_id" json:"doctorId"`
	OrganizationID int64      `db:"organization_id" json:"organizationId"`
	VisitDate      time.Time  `db:"visit_date" json:"visitDate"`
	Complaint      string     `db:"complaint" json:"complaint"`
	Diagnosis      *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment      *string    `db:"treatment" json:"treatment,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	HeartRate      *int       `db:"heart_rate" json:"heartRate,omitempty"`
	Temperature    *float64   `db:"temperature" json:"temperature,omitempty"`
	Weight         *float64   `db:"weight" json:"weight,omitempty"`
	FollowUpDate   *time.Time `db:"follow_up_date" json:"followUpDate,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Patch carries the mutable visit fields for a partial update. A nil
// pointer leaves the column untouched; the Set flags on the nullable
// fields distinguish "not provided" from "clear to NULL" (an empty string
// on the wire clears).
type Patch struct {
	VisitDate *time.Time
	Complaint *string
	Diagnosis *string
	Treatment *string
	Notes     *string

	HeartRate       *int
	HeartRateSet    bool
	Temperature     *float64
	TemperatureSet  bool
	Weight          *float64
	WeightSet       bool
	FollowUpDate    *time.Time
	FollowUpDateSet bool
}

// Empty reports whether the patch would touch nothing.
func (p Patch) Empty() bool {
	return p.VisitDate == nil && p.Complaint == nil && p.Diagnosis == nil &&
		p.Treatment == nil && p.Notes == nil &&
		!p.HeartRateSet && !p.TemperatureSet && !p.WeightSet && !p.FollowUpDateSet
}

// Filter narrows the org-wide visit listing. Zero values mean no filter;
// OrgID always comes from the caller's identity.
type Filter struct {
	OrgID     int64
	Status    string
	PatientID int64
	DoctorID  int64
}

// Prescription is a medication order attached to a visit.
type Prescription struct {
	ID             int64     `db:"id" json:"id"`
	VisitID        int64     `db:"visit_id" json:"visitId"`
	PatientID      int64     `db:"patient_id" json:"patientId"`
	OrganizationID int64     `db:"organization_id" json:"organizationId"`
	Medication     string    `db:"medication" json:"medication"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Duration       *string   `db:"duration" json:"duration,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
