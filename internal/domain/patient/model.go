package patient

import (
	"time"

	"github.com/google/uuid"
)

// Default blood-pressure thresholds applied at registration when the
// clinician does not set their own.
const (
	DefaultSystolicThreshold  = 160
	DefaultDiastolicThreshold = 100
)

// Patient maps to the patients table. Thresholds are the per-patient upper
// bounds a reading is evaluated against; WearableUserID links the patient to
// their account at the wearable data provider and stays nil until a device is
// initialised.
type Patient struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	Phone              string    `db:"phone_number" json:"phone_number"`
	ClinicianID        string    `db:"clinician_id" json:"clinician_id"`
	SystolicThreshold  int       `db:"systolic_threshold" json:"systolic_threshold"`
	DiastolicThreshold int       `db:"diastolic_threshold" json:"diastolic_threshold"`
	WearableUserID     *string   `db:"wearable_user_id" json:"wearable_user_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
