package vitals

// Decision is the outcome of evaluating a reading against a patient's
// thresholds.
type Decision string

const (
	DecisionNone          Decision = "no_alert"
	DecisionHighSystolic  Decision = "high_systolic"
	DecisionHighDiastolic Decision = "high_diastolic"
)

// Evaluate compares a reading against per-patient thresholds. A value equal
// to its threshold does not trigger. When both values exceed, the systolic
// branch wins: at most one alert type per reading.
func Evaluate(r CanonicalReading, systolicThreshold, diastolicThreshold int) Decision {
	if r.Systolic > systolicThreshold {
		return DecisionHighSystolic
	}
	if r.Diastolic > diastolicThreshold {
		return DecisionHighDiastolic
	}
	return DecisionNone
}
