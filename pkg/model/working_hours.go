package model

import "time"

// WorkingHours is one worker's availability on one calendar day. At most one
// entry exists per (worker_id, work_date) pair; a second save for the same
// day replaces the first.
type WorkingHours struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	WorkerID  string    `json:"worker_id" bson:"worker_id" validate:"required,mongodb"`
	WorkDate  string    `json:"work_date" bson:"work_date" validate:"required,datetime=2006-01-02"`
	StartTime string    `json:"start_time" bson:"start_time" validate:"required,wall_clock"`
	EndTime   string    `json:"end_time" bson:"end_time" validate:"required,wall_clock"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
