package patient

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

const patientCols = `id, organization_id, first_name, last_name, gender, birth_date,
	phone, email, address_line, city, state, postal_code, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	var p Patient
	err := r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id).Scan(
		&p.ID, &p.OrganizationID, &p.FirstName, &p.LastName, &p.Gender, &p.BirthDate,
		&p.Phone, &p.Email, &p.AddressLine, &p.City, &p.State, &p.PostalCode,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
