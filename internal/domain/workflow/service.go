package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/audit"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
)

const (
	pendingUserCap = 50
	pendingOrgCap  = 20

	// placeholderAvgHours stands in for a derived processing-time metric
	// until approvals carry timestamps; the stats payload is marked as an
	// estimate because of it and the synthesized priority breakdown.
	placeholderAvgHours = 24.0
)

type Service struct {
	repo  Repository
	audit audit.Repository
}

func NewService(repo Repository, auditRepo audit.Repository) *Service {
	return &Service{repo: repo, audit: auditRepo}
}

// Stats aggregates the pending-approval workload. Pending users are scoped
// to the caller's organization when the caller has one; organization
// approvals are a platform-level concern and are never org-scoped.
func (s *Service) Stats(ctx context.Context, id auth.Identity) (*Stats, error) {
	pendingUsers, err := s.repo.CountPendingUsers(ctx, id.OrgID)
	if err != nil {
		return nil, fmt.Errorf("count pending users: %w", err)
	}
	pendingOrgs, err := s.repo.CountPendingOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pending organizations: %w", err)
	}
	completedToday, err := s.audit.CountCompletedToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("count completed today: %w", err)
	}

	total := pendingUsers + pendingOrgs
	urgent := total * 10 / 100
	medium := total * 50 / 100
	low := total * 15 / 100
	high := total - urgent - medium - low

	return &Stats{
		PendingUsers:         pendingUsers,
		PendingOrganizations: pendingOrgs,
		CompletedToday:       completedToday,
		AvgProcessingHours:   placeholderAvgHours,
		ByType: map[string]int{
			string(KindUserApproval): pendingUsers,
			string(KindOrgApproval):  pendingOrgs,
		},
		ByPriority: map[string]int{
			"urgent": urgent,
			"high":   high,
			"medium": medium,
			"low":    low,
		},
		Estimated: true,
	}, nil
}

// TaskFilter narrows the synthetic task listing. Empty values and the
// literal "all" mean no filter.
type TaskFilter struct {
	Type     string
	Priority string
	Status   string
}

func (f TaskFilter) matches(t *Task) bool {
	if f.Type != "" && f.Type != "all" && f.Type != string(t.Type) {
		return false
	}
	if f.Priority != "" && f.Priority != "all" && f.Priority != t.Priority {
		return false
	}
	if f.Status != "" && f.Status != "all" && f.Status != t.Status {
		return false
	}
	return true
}

// ListTasks builds the synthetic task list from pending users (priority
// medium) and inactive organizations (priority high), newest first.
func (s *Service) ListTasks(ctx context.Context, id auth.Identity, filter TaskFilter) ([]*Task, error) {
	users, err := s.repo.PendingUsers(ctx, id.OrgID, pendingUserCap)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	orgs, err := s.repo.PendingOrganizations(ctx, pendingOrgCap)
	if err != nil {
		return nil, fmt.Errorf("list pending organizations: %w", err)
	}

	tasks := make([]*Task, 0, len(users)+len(orgs))
	for _, u := range users {
		ref := TaskRef{Kind: KindUserApproval, ID: u.ID}
		tasks = append(tasks, &Task{
			ID:          ref.TaskID(),
			Type:        KindUserApproval,
			Title:       "User approval: " + u.Name,
			Description: fmt.Sprintf("Approve account for %s", u.Email),
			Priority:    "medium",
			Status:      "pending",
			CreatedAt:   u.CreatedAt,
		})
	}
	for _, o := range orgs {
		ref := TaskRef{Kind: KindOrgApproval, ID: o.ID}
		tasks = append(tasks, &Task{
			ID:          ref.TaskID(),
			Type:        KindOrgApproval,
			Title:       "Organization approval: " + o.Name,
			Description: fmt.Sprintf("Activate organization %s", o.Name),
			Priority:    "high",
			Status:      "pending",
			CreatedAt:   o.CreatedAt,
		})
	}

	filtered := tasks[:0]
	for _, t := range tasks {
		if filter.matches(t) {
			filtered = append(filtered, t)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return filtered, nil
}

// ApprovalResult reports what an approval did.
type ApprovalResult struct {
	TaskID      int64    `json:"taskId"`
	Type        TaskKind `json:"type"`
	EntityID    int64    `json:"entityId"`
	RowsUpdated int64    `json:"-"`
}

// Approve activates the entity behind the task. For user tasks the role
// defaults to "user" and must belong to the recognized role set. A task id
// whose backing row no longer exists still reports success; the update
// simply touches zero rows.
func (s *Service) Approve(ctx context.Context, id auth.Identity, taskID int64, role string) (*ApprovalResult, error) {
	ref := ParseTaskID(taskID)
	result := &ApprovalResult{TaskID: taskID, Type: ref.Kind, EntityID: ref.ID}

	switch ref.Kind {
	case KindUserApproval:
		if role == "" {
			role = string(auth.RoleUser)
		}
		parsed, ok := auth.ParseRole(role)
		if !ok {
			return nil, &InvalidRoleError{Role: role}
		}
		rows, err := s.repo.ActivateUser(ctx, ref.ID, parsed.String())
		if err != nil {
			return nil, fmt.Errorf("activate user %d: %w", ref.ID, err)
		}
		result.RowsUpdated = rows
		s.record(ctx, id, audit.ActionUserApproved, fmt.Sprintf("user %d approved with role %s", ref.ID, parsed))
	case KindOrgApproval:
		rows, err := s.repo.ActivateOrganization(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("activate organization %d: %w", ref.ID, err)
		}
		result.RowsUpdated = rows
		s.record(ctx, id, audit.ActionOrgApproved, fmt.Sprintf("organization %d approved", ref.ID))
	}

	return result, nil
}

// Reject records the rejection and changes nothing else. Rejection is a
// deliberate no-op on user and organization rows; only the audit trail
// remembers it. Known limitation carried over from the workflow design.
func (s *Service) Reject(ctx context.Context, id auth.Identity, taskID int64, reason string) {
	ref := ParseTaskID(taskID)
	s.record(ctx, id, audit.ActionTaskRejected,
		fmt.Sprintf("%s task %d rejected: %s", ref.Kind, taskID, reason))
}

func (s *Service) record(ctx context.Context, id auth.Identity, action, details string) {
	if s.audit == nil {
		return
	}
	// Audit failures never fail the request.
	_ = s.audit.Record(ctx, &audit.Entry{
		UserID:  id.UserID,
		OrgID:   id.OrgID,
		Action:  action,
		Details: details,
	})
}

// InvalidRoleError marks an approval request carrying a role outside the
// recognized set.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("unrecognized role: %q", e.Role)
}
