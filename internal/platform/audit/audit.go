package audit

import (
	"context"
	"time"
)

// Well-known action strings. The workflow statistics endpoint counts
// today's entries whose action contains "APPROVED" or "COMPLETED", so
// approval and completion actions must keep those substrings.
const (
	ActionUserApproved = "USER_APPROVED"
	ActionOrgApproved  = "ORGANIZATION_APPROVED"
	ActionTaskRejected = "TASK_REJECTED"
	ActionVisitFinal   = "VISIT_COMPLETED"
)

// Entry is one append-only audit log row.
type Entry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	OrgID     int64     `db:"organization_id" json:"organizationId"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Repository persists audit entries and answers the aggregate queries the
// workflow statistics need.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	// CountCompletedToday counts today's entries whose action text matches
	// the approval/completion patterns.
	CountCompletedToday(ctx context.Context) (int, error)
}
