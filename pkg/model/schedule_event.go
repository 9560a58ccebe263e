package model

import "time"

const (
	EventSickLeave = "sick_leave"
	EventVacation  = "vacation"
	EventBusy      = "busy"
	EventBreak     = "break"
)

// ScheduleEvent is an ad-hoc non-booking block on a worker's calendar
// (sick leave, vacation, busy, break).
type ScheduleEvent struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	WorkerID  string    `json:"worker_id" bson:"worker_id" validate:"required,mongodb"`
	EventType string    `json:"event_type" bson:"event_type" validate:"required,oneof=sick_leave vacation busy break"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Notes     string    `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=2000"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type ScheduleEventUpdate struct {
	EventType string     `json:"event_type,omitempty" validate:"omitempty,oneof=sick_leave vacation busy break"`
	StartTime *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
