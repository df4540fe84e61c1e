package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the given lookup key.
var ErrNotFound = errors.New("patient not found")

// Repository defines the persistence interface for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByWearableID(ctx context.Context, wearableID string) (*Patient, error)
	ListByClinician(ctx context.Context, clinicianID string, limit, offset int) ([]*Patient, int, error)
	UpdateThresholds(ctx context.Context, id uuid.UUID, systolic, diastolic int) error
	UpdateWearableID(ctx context.Context, id uuid.UUID, wearableID string) error
}
