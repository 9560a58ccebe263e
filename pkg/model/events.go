package model

import "time"

// Change-notification payloads published to Kafka after successful writes.

const (
	EventBookingCreated      = "booking.created"
	EventBookingUpdated      = "booking.updated"
	EventBookingTimesChanged = "booking.times_changed"
	EventBookingDeleted      = "booking.deleted"

	EventScheduleEventCreated = "schedule_event.created"
	EventScheduleEventUpdated = "schedule_event.updated"
	EventScheduleEventDeleted = "schedule_event.deleted"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	WorkerID   string    `json:"worker_id"`
	ClientID   string    `json:"client_id,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ScheduleEventEvent struct {
	Type       string    `json:"type"`
	EventID    string    `json:"event_id"`
	WorkerID   string    `json:"worker_id"`
	EventType  string    `json:"event_type"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}
