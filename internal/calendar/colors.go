package calendar

import "carebook/pkg/model"

const workingHoursColor = "#E2E8F0"

const fallbackColor = "#9E9E9E"

func bookingColor(status string) string {
	switch status {
	case model.BookingPending:
		return "#FFA500"
	case model.BookingConfirmed:
		return "#4CAF50"
	case model.BookingCancelled:
		return "#F44336"
	case model.BookingCompleted:
		return "#2196F3"
	default:
		return fallbackColor
	}
}

func eventColor(eventType string) string {
	switch eventType {
	case model.EventSickLeave:
		return "#FF5252"
	case model.EventVacation:
		return "#7C4DFF"
	case model.EventBusy:
		return "#FF9800"
	case model.EventBreak:
		return "#607D8B"
	default:
		return fallbackColor
	}
}
