package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, name, email, phone_number, clinician_id,
	systolic_threshold, diastolic_threshold, wearable_user_id, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()

	return r.pool.QueryRow(ctx, `
		INSERT INTO patients (
			id, name, email, phone_number, clinician_id,
			systolic_threshold, diastolic_threshold, wearable_user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.ClinicianID,
		p.SystolicThreshold, p.DiastolicThreshold, p.WearableUserID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByWearableID(ctx context.Context, wearableID string) (*Patient, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE wearable_user_id = $1`, wearableID))
}

func (r *repoPG) ListByClinician(ctx context.Context, clinicianID string, limit, offset int) ([]*Patient, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE clinician_id = $1`, clinicianID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+` FROM patients
		WHERE clinician_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`,
		clinicianID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) UpdateThresholds(ctx context.Context, id uuid.UUID, systolic, diastolic int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET
			systolic_threshold = $2, diastolic_threshold = $3, updated_at = NOW()
		WHERE id = $1`,
		id, systolic, diastolic)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateWearableID(ctx context.Context, id uuid.UUID, wearableID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET wearable_user_id = $2, updated_at = NOW()
		WHERE id = $1`,
		id, wearableID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &p.ClinicianID,
		&p.SystolicThreshold, &p.DiastolicThreshold, &p.WearableUserID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
