package audit

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

func (r *repoPG) Record(ctx context.Context, e *Entry) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_log (user_id, organization_id, action, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.UserID, e.OrgID, e.Action, e.Details,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *repoPG) CountCompletedToday(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM audit_log
		WHERE created_at >= date_trunc('day', NOW())
		  AND (action LIKE '%APPROVED%' OR action LIKE '%COMPLETED%')`,
	).Scan(&count)
	return count, err
}
