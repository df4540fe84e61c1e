package vitals

import (
	"errors"
	"testing"
)

func intp(v int) *int { return &v }

func bp(systolic, diastolic, heartRate *int) *PushBody {
	return &PushBody{BloodPressure: &PushVitals{
		Systolic:  systolic,
		Diastolic: diastolic,
		HeartRate: heartRate,
	}}
}

func TestNormalizePush(t *testing.T) {
	t.Run("payload block", func(t *testing.T) {
		cr, err := NormalizePush(PushEvent{
			UserID:    "wu-1",
			EventType: EventBloodPressureUpdated,
			Payload:   bp(intp(145), intp(95), intp(78)),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cr.Systolic != 145 || cr.Diastolic != 95 || cr.HeartRate != 78 {
			t.Errorf("got %d/%d hr %d", cr.Systolic, cr.Diastolic, cr.HeartRate)
		}
		if cr.Source != SourceWearable {
			t.Errorf("expected wearable source, got %q", cr.Source)
		}
	})

	t.Run("data block accepted", func(t *testing.T) {
		cr, err := NormalizePush(PushEvent{
			UserID:    "wu-1",
			EventType: EventBloodPressureUpdated,
			Data:      bp(intp(120), intp(80), nil),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cr.Systolic != 120 || cr.Diastolic != 80 {
			t.Errorf("got %d/%d", cr.Systolic, cr.Diastolic)
		}
	})

	t.Run("payload preferred over data", func(t *testing.T) {
		cr, err := NormalizePush(PushEvent{
			UserID:    "wu-1",
			EventType: EventBloodPressureUpdated,
			Payload:   bp(intp(145), intp(95), nil),
			Data:      bp(intp(100), intp(60), nil),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cr.Systolic != 145 {
			t.Errorf("expected payload block to win, got systolic %d", cr.Systolic)
		}
	})

	t.Run("patient_id alone is a valid correlation key", func(t *testing.T) {
		_, err := NormalizePush(PushEvent{
			PatientID: "7b0e5f2a-0000-0000-0000-000000000000",
			EventType: EventBloodPressureUpdated,
			Data:      bp(intp(120), intp(80), nil),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing heart rate defaults to zero", func(t *testing.T) {
		cr, err := NormalizePush(PushEvent{
			UserID:    "wu-1",
			EventType: EventBloodPressureUpdated,
			Payload:   bp(intp(145), intp(95), nil),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cr.HeartRate != 0 {
			t.Errorf("expected zero heart rate, got %d", cr.HeartRate)
		}
	})

	t.Run("unknown event type ignored", func(t *testing.T) {
		_, err := NormalizePush(PushEvent{UserID: "wu-1", EventType: "sleep_updated"})
		if !errors.Is(err, ErrEventIgnored) {
			t.Errorf("expected ErrEventIgnored, got %v", err)
		}
	})

	t.Run("disconnect event ignored", func(t *testing.T) {
		_, err := NormalizePush(PushEvent{UserID: "wu-1", EventType: EventUserDisconnected})
		if !errors.Is(err, ErrEventIgnored) {
			t.Errorf("expected ErrEventIgnored, got %v", err)
		}
	})

	t.Run("missing systolic", func(t *testing.T) {
		_, err := NormalizePush(PushEvent{
			UserID:    "wu-1",
			EventType: EventBloodPressureUpdated,
			Payload:   bp(nil, intp(95), nil),
		})
		if !errors.Is(err, ErrMissingVitals) {
			t.Errorf("expected ErrMissingVitals, got %v", err)
		}
	})

	t.Run("no blood pressure block", func(t *testing.T) {
		_, err := NormalizePush(PushEvent{
			UserID:    "wu-1",
			EventType: EventBloodPressureUpdated,
			Payload:   &PushBody{},
		})
		if !errors.Is(err, ErrMissingVitals) {
			t.Errorf("expected ErrMissingVitals, got %v", err)
		}
	})

	t.Run("no body at all", func(t *testing.T) {
		_, err := NormalizePush(PushEvent{UserID: "wu-1", EventType: EventBloodPressureUpdated})
		if !errors.Is(err, ErrMissingVitals) {
			t.Errorf("expected ErrMissingVitals, got %v", err)
		}
	})

	t.Run("no correlation key", func(t *testing.T) {
		_, err := NormalizePush(PushEvent{
			EventType: EventBloodPressureUpdated,
			Payload:   bp(intp(145), intp(95), nil),
		})
		if !errors.Is(err, ErrPatientNotFound) {
			t.Errorf("expected ErrPatientNotFound, got %v", err)
		}
	})
}
