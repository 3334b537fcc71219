package referral

import "time"

// Status is the referral lifecycle state. The wire values are exactly the
// four listed constants; anything else is rejected at the boundary.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// ParseStatus maps a wire value onto the closed status set.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// Referral is a directed handoff between care roles inside one
// organization.
type Referral struct {
	ID             int64     `db:"id" json:"id"`
	OrganizationID int64     `db:"organization_id" json:"organizationId"`
	PatientID      int64     `db:"patient_id" json:"patientId"`
	FromUserID     int64     `db:"from_user_id" json:"fromUserId"`
	ToRole         string    `db:"to_role" json:"toRole"`
	Reason         string    `db:"reason" json:"reason"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	Status         Status    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Filter narrows the org-scoped referral listing. Zero values mean no
// filter; OrgID is always set by the service from the caller's identity.
type Filter struct {
	OrgID      int64
	ToRole     string
	FromUserID int64
	Status     string
	PatientID  int64
}

// Patch carries the two mutable referral fields. Nil means leave as-is.
type Patch struct {
	Status *Status
	Notes  *string
}
