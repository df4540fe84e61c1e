package vitals

import (
	"fmt"
)

// Provider push event types we know about. Anything else is acknowledged and
// dropped so the provider does not retry indefinitely.
const (
	EventBloodPressureUpdated = "blood_pressure_updated"
	EventUserDisconnected     = "user_disconnected"
)

// PushEvent is the wire shape of a provider webhook delivery. Two correlation
// keys are possible: some deliveries carry our patient_id directly, others
// only the provider-side user_id. The reading body has shipped under both
// "payload" and "data" across provider versions, so both are accepted.
type PushEvent struct {
	UserID    string    `json:"user_id"`
	PatientID string    `json:"patient_id"`
	EventType string    `json:"event_type"`
	Payload   *PushBody `json:"payload"`
	Data      *PushBody `json:"data"`
}

// PushBody is the data block of a push event.
type PushBody struct {
	BloodPressure *PushVitals `json:"blood_pressure"`
}

// PushVitals carries one blood pressure measurement. Pointer fields
// distinguish absent values from zeroes.
type PushVitals struct {
	Systolic  *int `json:"systolic"`
	Diastolic *int `json:"diastolic"`
	HeartRate *int `json:"heart_rate"`
}

// vitals returns the blood pressure block of whichever body the event
// carried, preferring payload.
func (e PushEvent) vitals() *PushVitals {
	if e.Payload != nil && e.Payload.BloodPressure != nil {
		return e.Payload.BloodPressure
	}
	if e.Data != nil {
		return e.Data.BloodPressure
	}
	return nil
}

// NormalizePush validates a push event and lowers it to the canonical shape.
// Events that are not blood pressure updates return ErrEventIgnored; the
// caller acknowledges them without side effects. PatientID is left unset for
// the caller to resolve from the event's correlation key.
func NormalizePush(e PushEvent) (CanonicalReading, error) {
	if e.EventType != EventBloodPressureUpdated {
		return CanonicalReading{}, fmt.Errorf("%w: %q", ErrEventIgnored, e.EventType)
	}
	if e.UserID == "" && e.PatientID == "" {
		return CanonicalReading{}, fmt.Errorf("%w: event has no patient_id or user_id", ErrPatientNotFound)
	}

	v := e.vitals()
	if v == nil || v.Systolic == nil || v.Diastolic == nil {
		return CanonicalReading{}, ErrMissingVitals
	}

	cr := CanonicalReading{
		Systolic:  *v.Systolic,
		Diastolic: *v.Diastolic,
		Source:    SourceWearable,
	}
	if v.HeartRate != nil {
		cr.HeartRate = *v.HeartRate
	}
	return cr, nil
}
