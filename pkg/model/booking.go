package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking is a confirmed or pending appointment between a worker and a
// client. Status transitions are driven externally; this service only reads
// Status. Version backs the expected-version precondition on time updates.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	WorkerID  string    `json:"worker_id" bson:"worker_id" validate:"required,mongodb"`
	ClientID  string    `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Notes     string    `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=2000"`
	Version   int64     `json:"version" bson:"version" validate:"omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type BookingUpdate struct {
	StartTime *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Status    string     `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
