package vitals

import (
	"fmt"
	"time"

	"github.com/Ludoramacha/healthApp/internal/domain/patient"
)

const alertTimeLayout = "2006-01-02 15:04:05"

// Compose builds the alert record for a reading that tripped a threshold.
// The message embeds the full vital set so the notification is readable
// without opening the app. observedAt is stamped here, at composition time,
// not copied from the reading.
func Compose(p *patient.Patient, r *Reading, decision Decision, observedAt time.Time) *Alert {
	msg := fmt.Sprintf(
		"🚨 High Blood Pressure Alert!\nPatient: %s\nSystolic: %d mmHg\nDiastolic: %d mmHg\nHeart Rate: %d bpm\nTime: %s",
		p.Name, r.Systolic, r.Diastolic, r.HeartRate, observedAt.Format(alertTimeLayout),
	)
	return &Alert{
		PatientID:  p.ID,
		ReadingID:  r.ID,
		Type:       string(decision),
		Message:    msg,
		ObservedAt: observedAt,
	}
}
