package model

import "time"

// Worker is a directory entry for a nanny. Profile management lives outside
// this service; bookings and working hours reference workers by ID.
type Worker struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FirstName string    `json:"first_name" bson:"first_name" validate:"required,min=1,max=100"`
	LastName  string    `json:"last_name" bson:"last_name" validate:"required,min=1,max=100"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type WorkerUpdate struct {
	FirstName string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Active    *bool  `json:"active,omitempty"`
}
