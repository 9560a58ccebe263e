package model

import "time"

// BookingLock is an advisory lock preventing concurrent booking creation for
// the same worker/slot while the overlap check runs.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
