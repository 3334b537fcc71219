package workflow

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const pendingUserWhere = `(role IS NULL OR role = '' OR is_active = false)`

func (r *repoPG) PendingUsers(ctx context.Context, orgID int64, limit int) ([]*PendingUser, error) {
	query := `
		SELECT id, organization_id, name, email, created_at
		FROM users
		WHERE ` + pendingUserWhere + `
		  AND ($1 = 0 OR organization_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*PendingUser
	for rows.Next() {
		var u PendingUser
		if err := rows.Scan(&u.ID, &u.OrganizationID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *repoPG) CountPendingUsers(ctx context.Context, orgID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM users
		WHERE `+pendingUserWhere+`
		  AND ($1 = 0 OR organization_id = $1)`, orgID).Scan(&count)
	return count, err
}

func (r *repoPG) PendingOrganizations(ctx context.Context, limit int) ([]*PendingOrganization, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at
		FROM organizations
		WHERE is_active = false
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*PendingOrganization
	for rows.Next() {
		var o PendingOrganization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, &o)
	}
	return orgs, rows.Err()
}

func (r *repoPG) CountPendingOrganizations(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM organizations WHERE is_active = false`).Scan(&count)
	return count, err
}

func (r *repoPG) ActivateUser(ctx context.Context, id int64, role string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = true, role = $2, updated_at = NOW()
		WHERE id = $1`, id, role)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) ActivateOrganization(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE organizations SET is_active = true, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
