package vitals

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists readings and alerts.
type Repository interface {
	InsertReading(ctx context.Context, r *Reading) error
	ListReadings(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reading, int, error)
	LatestReading(ctx context.Context, patientID uuid.UUID) (*Reading, error)

	InsertAlert(ctx context.Context, a *Alert) error
	ListAlerts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error)
	GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error)
	ResolveAlert(ctx context.Context, id uuid.UUID) error
}
