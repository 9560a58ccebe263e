package model

// TimeWindow is a requested appointment slot: one calendar day plus a
// wall-clock start and end. Windows are transient; they are only serialized
// into a Booking on confirmed submission. Start and end accept HH:mm or
// HH:mm:ss and are normalized to seconds before comparison.
type TimeWindow struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,wall_clock"`
	EndTime   string `json:"end_time" validate:"required,wall_clock"`
}
