package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const referralCols = `id, organization_id, patient_id, from_user_id, to_role, reason, notes, status, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, ref *Referral) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO referrals (organization_id, patient_id, from_user_id, to_role, reason, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		ref.OrganizationID, ref.PatientID, ref.FromUserID, ref.ToRole,
		ref.Reason, ref.Notes, ref.Status,
	).Scan(&ref.ID, &ref.CreatedAt, &ref.UpdatedAt)
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Referral, int, error) {
	where := []string{"organization_id = $1"}
	args := []interface{}{f.OrgID}

	if f.ToRole != "" {
		args = append(args, f.ToRole)
		where = append(where, fmt.Sprintf("to_role = $%d", len(args)))
	}
	if f.FromUserID != 0 {
		args = append(args, f.FromUserID)
		where = append(where, fmt.Sprintf("from_user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.PatientID != 0 {
		args = append(args, f.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM referrals WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM referrals WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		referralCols, clause, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var referrals []*Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, 0, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, total, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Referral, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM referrals WHERE id = $1", referralCols), id)
	ref, err := scanReferral(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ref, err
}

func (r *repoPG) Update(ctx context.Context, id, orgID int64, p Patch) (int64, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{id, orgID}

	if p.Status != nil {
		args = append(args, *p.Status)
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if p.Notes != nil {
		args = append(args, *p.Notes)
		set = append(set, fmt.Sprintf("notes = $%d", len(args)))
	}

	query := fmt.Sprintf(
		"UPDATE referrals SET %s WHERE id = $1 AND organization_id = $2",
		strings.Join(set, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) Delete(ctx context.Context, id, orgID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM referrals WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanReferral(row pgx.Row) (*Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.OrganizationID, &ref.PatientID, &ref.FromUserID,
		&ref.ToRole, &ref.Reason, &ref.Notes, &ref.Status, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
