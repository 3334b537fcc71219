package workflow

import "time"

// TaskKind tags the entity a synthetic approval task was derived from.
type TaskKind string

const (
	KindUserApproval TaskKind = "user_approval"
	KindOrgApproval  TaskKind = "organization_approval"
)

// orgTaskOffset keeps organization-derived task ids in a disjoint numeric
// range from user-derived ids on the wire: task id < orgTaskOffset is a
// user id, task id >= orgTaskOffset is organizationId + orgTaskOffset.
const orgTaskOffset = 100000

// TaskRef is the explicit tagged reference behind a numeric task id. All
// internal code passes TaskRef; the numeric encoding exists only at the API
// boundary.
type TaskRef struct {
	Kind TaskKind
	ID   int64
}

// TaskID encodes the reference as the wire-level numeric task id.
func (r TaskRef) TaskID() int64 {
	if r.Kind == KindOrgApproval {
		return r.ID + orgTaskOffset
	}
	return r.ID
}

// ParseTaskID decodes a wire-level task id into a tagged reference.
func ParseTaskID(taskID int64) TaskRef {
	if taskID >= orgTaskOffset {
		return TaskRef{Kind: KindOrgApproval, ID: taskID - orgTaskOffset}
	}
	return TaskRef{Kind: KindUserApproval, ID: taskID}
}

// Task is a synthetic, non-persisted record representing one pending
// approval, built on read from user and organization rows.
type Task struct {
	ID          int64     `json:"id"`
	Type        TaskKind  `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PendingUser is a user row awaiting approval: no role assigned or not yet
// activated.
type PendingUser struct {
	ID             int64     `db:"id"`
	OrganizationID int64     `db:"organization_id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	CreatedAt      time.Time `db:"created_at"`
}

// PendingOrganization is an organization row awaiting activation.
type PendingOrganization struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Stats aggregates the pending-approval workload. The priority breakdown is
// synthesized from fixed proportions of the pending total rather than a
// persisted priority field, so the payload carries Estimated=true.
type Stats struct {
	PendingUsers         int            `json:"pendingUsers"`
	PendingOrganizations int            `json:"pendingOrganizations"`
	CompletedToday       int            `json:"completedToday"`
	AvgProcessingHours   float64        `json:"avgProcessingHours"`
	ByType               map[string]int `json:"byType"`
	ByPriority           map[string]int `json:"byPriority"`
	Estimated            bool           `json:"estimated"`
}
