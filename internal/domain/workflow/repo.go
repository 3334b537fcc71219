package workflow

import "context"

// Repository reads pending-approval rows and applies activations. orgID 0
// means "all organizations" for the user queries.
type Repository interface {
	PendingUsers(ctx context.Context, orgID int64, limit int) ([]*PendingUser, error)
	CountPendingUsers(ctx context.Context, orgID int64) (int, error)
	PendingOrganizations(ctx context.Context, limit int) ([]*PendingOrganization, error)
	CountPendingOrganizations(ctx context.Context) (int, error)

	// ActivateUser sets is_active and the assigned role, returning the
	// number of rows updated. Zero rows is not an error: approving a task
	// whose backing row has vanished is reported as success upstream.
	ActivateUser(ctx context.Context, id int64, role string) (int64, error)
	ActivateOrganization(ctx context.Context, id int64) (int64, error)
}
