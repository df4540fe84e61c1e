package vitals

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	readingColumns = `id, patient_id, systolic, diastolic, heart_rate, source, recorded_at`
	alertColumns   = `id, patient_id, reading_id, alert_type, message, resolved, observed_at, created_at`
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) InsertReading(ctx context.Context, reading *Reading) error {
	reading.ID = uuid.New()

	return r.pool.QueryRow(ctx, `
		INSERT INTO readings (id, patient_id, systolic, diastolic, heart_rate, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING recorded_at`,
		reading.ID, reading.PatientID, reading.Systolic, reading.Diastolic,
		reading.HeartRate, reading.Source,
	).Scan(&reading.RecordedAt)
}

func (r *repoPG) ListReadings(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reading, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM readings WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+readingColumns+` FROM readings
		WHERE patient_id = $1
		ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var readings []*Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, 0, err
		}
		readings = append(readings, reading)
	}
	return readings, total, rows.Err()
}

func (r *repoPG) LatestReading(ctx context.Context, patientID uuid.UUID) (*Reading, error) {
	reading, err := scanReading(r.pool.QueryRow(ctx, `
		SELECT `+readingColumns+` FROM readings
		WHERE patient_id = $1
		ORDER BY recorded_at DESC LIMIT 1`,
		patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reading, err
}

func (r *repoPG) InsertAlert(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()

	return r.pool.QueryRow(ctx, `
		INSERT INTO alerts (id, patient_id, reading_id, alert_type, message, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING resolved, created_at`,
		a.ID, a.PatientID, a.ReadingID, a.Type, a.Message, a.ObservedAt,
	).Scan(&a.Resolved, &a.CreatedAt)
}

func (r *repoPG) ListAlerts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+alertColumns+` FROM alerts
		WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

func (r *repoPG) GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := scanAlert(r.pool.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlertNotFound
	}
	return a, err
}

func (r *repoPG) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE alerts SET resolved = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func scanReading(row pgx.Row) (*Reading, error) {
	var r Reading
	err := row.Scan(
		&r.ID, &r.PatientID, &r.Systolic, &r.Diastolic,
		&r.HeartRate, &r.Source, &r.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID, &a.PatientID, &a.ReadingID, &a.Type, &a.Message,
		&a.Resolved, &a.ObservedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
