package vitals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ludoramacha/healthApp/internal/domain/patient"
	"github.com/Ludoramacha/healthApp/internal/platform/notify"
)

// PatientDirectory is the slice of the patient repository the pipeline needs
// to resolve reading owners and their thresholds.
type PatientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	GetByWearableID(ctx context.Context, wearableID string) (*patient.Patient, error)
}

// Service runs the ingestion pipeline and serves reading and alert queries.
type Service struct {
	repo     Repository
	patients PatientDirectory
	sender   notify.Sender
	log      zerolog.Logger

	// now is swapped in tests to pin alert timestamps.
	now func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, sender notify.Sender, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		sender:   sender,
		log:      log,
		now:      time.Now,
	}
}

// IngestReading runs one reading through the pipeline: resolve the patient,
// persist the reading, evaluate thresholds, and on exceedance write the alert
// and notify. The reading is always persisted before evaluation; a reading
// that fails evaluation-side steps is never lost.
func (s *Service) IngestReading(ctx context.Context, cr CanonicalReading) (*IngestResult, error) {
	if cr.Systolic <= 0 || cr.Diastolic <= 0 {
		return nil, ErrMissingVitals
	}

	p, err := s.patients.GetByID(ctx, cr.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("resolve patient: %w", err)
	}

	return s.process(ctx, p, cr)
}

// IngestPush handles a provider webhook delivery. Non-reading events are
// acknowledged without side effects; the caller maps ErrEventIgnored to a
// neutral 200.
func (s *Service) IngestPush(ctx context.Context, ev PushEvent) (*IngestResult, error) {
	cr, err := NormalizePush(ev)
	if err != nil {
		if errors.Is(err, ErrEventIgnored) {
			s.log.Info().
				Str("event_type", ev.EventType).
				Str("wearable_user_id", ev.UserID).
				Msg("ignoring non-reading push event")
		}
		return nil, err
	}

	p, err := s.resolvePushPatient(ctx, ev)
	if err != nil {
		return nil, err
	}
	cr.PatientID = p.ID

	return s.process(ctx, p, cr)
}

// resolvePushPatient finds the reading's owner using whichever correlation
// key the event carried: a direct patient id when present, otherwise the
// provider-side user id stored at link time.
func (s *Service) resolvePushPatient(ctx context.Context, ev PushEvent) (*patient.Patient, error) {
	if ev.PatientID != "" {
		id, err := uuid.Parse(ev.PatientID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid patient_id %q", ErrPatientNotFound, ev.PatientID)
		}
		p, err := s.patients.GetByID(ctx, id)
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("resolve patient: %w", err)
		}
		return p, nil
	}

	p, err := s.patients.GetByWearableID(ctx, ev.UserID)
	if errors.Is(err, patient.ErrNotFound) {
		return nil, fmt.Errorf("%w: no patient linked to wearable user %q", ErrPatientNotFound, ev.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve patient: %w", err)
	}
	return p, nil
}

func (s *Service) process(ctx context.Context, p *patient.Patient, cr CanonicalReading) (*IngestResult, error) {
	reading := &Reading{
		PatientID: p.ID,
		Systolic:  cr.Systolic,
		Diastolic: cr.Diastolic,
		HeartRate: cr.HeartRate,
		Source:    cr.Source,
	}
	if err := s.repo.InsertReading(ctx, reading); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	decision := Evaluate(cr, p.SystolicThreshold, p.DiastolicThreshold)
	if decision == DecisionNone {
		return &IngestResult{Reading: reading}, nil
	}

	alert := Compose(p, reading, decision, s.now().UTC())
	if err := s.repo.InsertAlert(ctx, alert); err != nil {
		// The reading is already safe; losing the alert row is logged, and
		// sending is skipped because there is no record to point at.
		s.log.Error().Err(err).
			Str("patient_id", p.ID.String()).
			Str("reading_id", reading.ID.String()).
			Str("alert_type", alert.Type).
			Msg("failed to persist alert")
		return &IngestResult{Reading: reading, AlertTriggered: true}, nil
	}

	s.notifyClinician(ctx, p, alert)
	return &IngestResult{Reading: reading, AlertTriggered: true}, nil
}

// notifyClinician delivers the alert message best effort. A send failure
// never fails ingestion; the alert row already exists for the dashboard.
func (s *Service) notifyClinician(ctx context.Context, p *patient.Patient, a *Alert) {
	if err := s.sender.Send(ctx, p.Phone, a.Message); err != nil {
		s.log.Error().Err(err).
			Str("patient_id", p.ID.String()).
			Str("alert_id", a.ID.String()).
			Msg("failed to send alert notification")
		return
	}
	s.log.Info().
		Str("patient_id", p.ID.String()).
		Str("alert_id", a.ID.String()).
		Str("alert_type", a.Type).
		Msg("alert notification sent")
}

func (s *Service) ListReadings(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reading, int, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, 0, ErrPatientNotFound
		}
		return nil, 0, err
	}
	return s.repo.ListReadings(ctx, patientID, limit, offset)
}

func (s *Service) ListAlerts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, 0, ErrPatientNotFound
		}
		return nil, 0, err
	}
	return s.repo.ListAlerts(ctx, patientID, limit, offset)
}

func (s *Service) ResolveAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	if err := s.repo.ResolveAlert(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetAlert(ctx, id)
}

// Dashboard aggregates everything a clinician view needs for one patient,
// keyed by the wearable user id the device reports under.
type Dashboard struct {
	Patient       *patient.Patient `json:"patient"`
	LatestReading *Reading         `json:"latest_reading"`
	Readings      []*Reading       `json:"readings"`
	ActiveAlerts  []*Alert         `json:"active_alerts"`
}

const dashboardWindow = 20

func (s *Service) BuildDashboard(ctx context.Context, wearableID string) (*Dashboard, error) {
	p, err := s.patients.GetByWearableID(ctx, wearableID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	latest, err := s.repo.LatestReading(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	readings, _, err := s.repo.ListReadings(ctx, p.ID, dashboardWindow, 0)
	if err != nil {
		return nil, err
	}
	alerts, _, err := s.repo.ListAlerts(ctx, p.ID, dashboardWindow, 0)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Patient:       p,
		LatestReading: latest,
		Readings:      readings,
		ActiveAlerts:  alerts,
	}, nil
}
