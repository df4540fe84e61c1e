package vitals

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Source tags where a reading came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceWearable Source = "wearable"
)

var (
	// ErrPatientNotFound means the reading's owner could not be resolved;
	// nothing is persisted.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrMissingVitals means an inbound payload lacked systolic or diastolic
	// values.
	ErrMissingVitals = errors.New("missing systolic or diastolic value")
	// ErrEventIgnored marks an inbound event that carries no reading. It is
	// acknowledged, not failed, so the provider does not retry it.
	ErrEventIgnored = errors.New("event carries no reading")
	// ErrStoreWrite wraps persistence failures that abort ingestion.
	ErrStoreWrite = errors.New("store write failed")
	// ErrAlertNotFound is returned when resolving an unknown alert.
	ErrAlertNotFound = errors.New("alert not found")
)

// Reading maps to the readings table. RecordedAt is assigned by the store on
// insert; readings are immutable once created.
type Reading struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Systolic   int       `db:"systolic" json:"systolic"`
	Diastolic  int       `db:"diastolic" json:"diastolic"`
	HeartRate  int       `db:"heart_rate" json:"heart_rate"`
	Source     Source    `db:"source" json:"source"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// Alert maps to the alerts table. ObservedAt is when the exceedance was
// processed, which may lag the reading's RecordedAt when the reading arrived
// via a delayed provider push; the two timestamps are deliberately separate
// fields. CreatedAt is assigned by the store.
type Alert struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	ReadingID  uuid.UUID `db:"reading_id" json:"reading_id"`
	Type       string    `db:"alert_type" json:"alert_type"`
	Message    string    `db:"message" json:"message"`
	Resolved   bool      `db:"resolved" json:"resolved"`
	ObservedAt time.Time `db:"observed_at" json:"observed_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CanonicalReading is the normalized shape every reading takes before
// entering the pipeline, regardless of whether it arrived through the API or
// a provider push.
type CanonicalReading struct {
	PatientID uuid.UUID
	Systolic  int
	Diastolic int
	HeartRate int
	Source    Source
}

// IngestResult reports the outcome of one pipeline run. AlertTriggered
// reflects the threshold decision only; it does not imply the notification
// was delivered.
type IngestResult struct {
	Reading        *Reading `json:"reading"`
	AlertTriggered bool     `json:"alert_triggered"`
}
