package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrAlreadyLinked is returned when a patient already has a wearable provider
// account; the linkage is set exactly once.
var ErrAlreadyLinked = errors.New("patient is already linked to a wearable account")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates and stores a new patient. Unset thresholds fall back to
// the defaults.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("patient name is required")
	}
	if p.Email == "" {
		return fmt.Errorf("patient email is required")
	}
	if p.Phone == "" {
		return fmt.Errorf("patient phone_number is required")
	}
	if p.ClinicianID == "" {
		return fmt.Errorf("clinician_id is required")
	}

	if p.SystolicThreshold == 0 {
		p.SystolicThreshold = DefaultSystolicThreshold
	}
	if p.DiastolicThreshold == 0 {
		p.DiastolicThreshold = DefaultDiastolicThreshold
	}
	if p.SystolicThreshold < 0 || p.DiastolicThreshold < 0 {
		return fmt.Errorf("thresholds must be positive")
	}

	// The wearable link is never accepted from callers; it is set exactly
	// once by device initialization.
	p.WearableUserID = nil

	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByWearableID(ctx context.Context, wearableID string) (*Patient, error) {
	return s.repo.GetByWearableID(ctx, wearableID)
}

func (s *Service) ListByClinician(ctx context.Context, clinicianID string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListByClinician(ctx, clinicianID, limit, offset)
}

// UpdateThresholds sets new blood-pressure limits for a patient. The two
// thresholds are independent: no systolic > diastolic cross-check is applied.
func (s *Service) UpdateThresholds(ctx context.Context, id uuid.UUID, systolic, diastolic int) error {
	if systolic <= 0 || diastolic <= 0 {
		return fmt.Errorf("thresholds must be positive")
	}
	return s.repo.UpdateThresholds(ctx, id, systolic, diastolic)
}

// LinkWearable stores the wearable provider account id on a patient. The link
// is set once; re-linking an already linked patient is rejected.
func (s *Service) LinkWearable(ctx context.Context, id uuid.UUID, wearableID string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.WearableUserID != nil {
		return ErrAlreadyLinked
	}
	return s.repo.UpdateWearableID(ctx, id, wearableID)
}
