package model

import "time"

type CalendarKind string

const (
	KindBooking       CalendarKind = "booking"
	KindScheduleEvent CalendarKind = "schedule_event"
	KindWorkingHours  CalendarKind = "working_hours"
)

// CalendarEvent is the read-only display projection over bookings, schedule
// events and working-hours blocks. It is regenerated on every load and never
// persisted. Callers must not rely on cross-category ordering, only on
// Start/End for layout.
type CalendarEvent struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Kind      CalendarKind `json:"kind"`
	Color     string       `json:"color"`
	WorkerID  string       `json:"worker_id"`
	Status    string       `json:"status,omitempty"`
	EventType string       `json:"event_type,omitempty"`
}
