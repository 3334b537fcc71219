package visit

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

const visitCols = `id, patient_id, doctor_id, organization_id, visit_date, complaint, diagnosis,
	treatment, notes, heart_rate, temperature, weight, follow_up_date, status, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO visits (patient_id, doctor_id, organization_id, visit_date, complaint,
			diagnosis, treatment, notes, heart_rate, temperature, weight, follow_up_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		v.PatientID, v.DoctorID, v.OrganizationID, v.VisitDate, v.Complaint,
		v.Diagnosis, v.Treatment, v.Notes, v.HeartRate, v.Temperature,
		v.Weight, v.FollowUpDate, v.Status,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Visit, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM visits WHERE id = $1", visitCols), id)
	v, err := scanVisit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID, orgID int64) ([]*Visit, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM visits
		WHERE patient_id = $1 AND organization_id = $2
		ORDER BY visit_date DESC`, visitCols), patientID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVisits(rows)
}

func (r *repoPG) Update(ctx context.Context, id, patientID, orgID int64, p Patch) (int64, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{id, patientID, orgID}

	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.VisitDate != nil {
		add("visit_date", *p.VisitDate)
	}
	if p.Complaint != nil {
		add("complaint", *p.Complaint)
	}
	if p.Diagnosis != nil {
		add("diagnosis", *p.Diagnosis)
	}
	if p.Treatment != nil {
		add("treatment", *p.Treatment)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if p.HeartRateSet {
		add("heart_rate", p.HeartRate)
	}
	if p.TemperatureSet {
		add("temperature", p.Temperature)
	}
	if p.WeightSet {
		add("weight", p.Weight)
	}
	if p.FollowUpDateSet {
		add("follow_up_date", p.FollowUpDate)
	}

	query := fmt.Sprintf(`
		UPDATE visits SET %s
		WHERE id = $1 AND patient_id = $2 AND organization_id = $3`,
		strings.Join(set, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) Finalize(ctx context.Context, id, patientID, orgID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE visits SET status = 'final', updated_at = NOW()
		WHERE id = $1 AND patient_id = $2 AND organization_id = $3`,
		id, patientID, orgID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error) {
	where := []string{"organization_id = $1"}
	args := []interface{}{f.OrgID}

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.PatientID != 0 {
		args = append(args, f.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if f.DoctorID != 0 {
		args = append(args, f.DoctorID)
		where = append(where, fmt.Sprintf("doctor_id = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM visits WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM visits WHERE %s ORDER BY visit_date DESC LIMIT $%d OFFSET $%d",
		visitCols, clause, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	visits, err := collectVisits(rows)
	return visits, total, err
}

func (r *repoPG) PrescriptionsByVisit(ctx context.Context, visitID, orgID int64) ([]*Prescription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.visit_id, p.patient_id, p.organization_id,
			p.medication, p.dosage, p.frequency, p.duration, p.created_at
		FROM prescriptions p
		JOIN visits v ON v.id = p.visit_id
		WHERE p.visit_id = $1 AND v.organization_id = $2
		ORDER BY p.created_at DESC`, visitID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.VisitID, &p.PatientID, &p.OrganizationID,
			&p.Medication, &p.Dosage, &p.Frequency, &p.Duration, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.PatientID, &v.DoctorID, &v.OrganizationID, &v.VisitDate,
		&v.Complaint, &v.Diagnosis, &v.Treatment, &v.Notes, &v.HeartRate,
		&v.Temperature, &v.Weight, &v.FollowUpDate, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVisits(rows pgx.Rows) ([]*Visit, error) {
	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
