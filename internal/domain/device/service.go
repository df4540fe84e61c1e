// Package device links patients to their wearable provider accounts and
// proxies provider-side device operations.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ludoramacha/healthApp/internal/domain/patient"
	"github.com/Ludoramacha/healthApp/internal/platform/wearable"
)

// ProviderClient is the slice of the wearable API client this package uses.
type ProviderClient interface {
	CreateUser(ctx context.Context, externalID, email string) (*wearable.LinkedUser, error)
	GetConnectionCode(ctx context.Context, userID string) (string, error)
	RequestSync(ctx context.Context, userID string) error
	GetLatestReading(ctx context.Context, userID string) (*wearable.Reading, error)
}

// PatientLinker is the slice of the patient service needed to attach a
// provider account to a patient record.
type PatientLinker interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	LinkWearable(ctx context.Context, id uuid.UUID, wearableID string) error
}

type Service struct {
	provider ProviderClient
	patients PatientLinker
	log      zerolog.Logger
}

func NewService(provider ProviderClient, patients PatientLinker, log zerolog.Logger) *Service {
	return &Service{provider: provider, patients: patients, log: log}
}

// LinkResult is the outcome of provisioning a provider account: the updated
// patient and the pairing code the patient enters on their device.
type LinkResult struct {
	Patient        *patient.Patient `json:"patient"`
	ConnectionCode string           `json:"connection_code"`
}

// Link provisions a provider account for the patient and stores the returned
// user id. A patient can be linked at most once; relinking surfaces
// patient.ErrAlreadyLinked.
func (s *Service) Link(ctx context.Context, patientID uuid.UUID) (*LinkResult, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.WearableUserID != nil {
		return nil, patient.ErrAlreadyLinked
	}

	linked, err := s.provider.CreateUser(ctx, p.ID.String(), p.Email)
	if err != nil {
		return nil, fmt.Errorf("provision wearable account: %w", err)
	}
	if err := s.patients.LinkWearable(ctx, p.ID, linked.UserID); err != nil {
		// The provider account now exists with no local owner; log the orphan
		// so it can be reconciled by hand.
		s.log.Error().Err(err).
			Str("patient_id", p.ID.String()).
			Str("wearable_user_id", linked.UserID).
			Msg("provider account created but local link failed")
		return nil, err
	}

	p.WearableUserID = &linked.UserID
	s.log.Info().
		Str("patient_id", p.ID.String()).
		Str("wearable_user_id", linked.UserID).
		Msg("patient linked to wearable provider")
	return &LinkResult{Patient: p, ConnectionCode: linked.ConnectionCode}, nil
}

// ConnectionCode fetches the pairing code the patient enters on their device.
func (s *Service) ConnectionCode(ctx context.Context, wearableID string) (string, error) {
	return s.provider.GetConnectionCode(ctx, wearableID)
}

// Sync asks the provider to push fresh data for the given wearable user.
func (s *Service) Sync(ctx context.Context, wearableID string) error {
	return s.provider.RequestSync(ctx, wearableID)
}

// LatestReading pulls the most recent provider-side reading. A nil reading
// with nil error means the provider has no data yet.
func (s *Service) LatestReading(ctx context.Context, wearableID string) (*wearable.Reading, error) {
	return s.provider.GetLatestReading(ctx, wearableID)
}

// IsProviderError reports whether err came from the provider, which handlers
// map to a bad gateway response.
func IsProviderError(err error) bool {
	return errors.Is(err, wearable.ErrAuthFailed) || errors.Is(err, wearable.ErrRequestFailed)
}
