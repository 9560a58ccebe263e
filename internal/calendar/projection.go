package calendar

import (
	"context"
	"sync"
	"time"

	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/model"
	"carebook/pkg/timeutil"
)

// BookingSource is the slice of the booking registry the projection needs.
type BookingSource interface {
	ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateTimes(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error)
}

// EventSource is the slice of the schedule-event registry the projection
// needs.
type EventSource interface {
	ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error)
	GetByID(ctx context.Context, id string) (*model.ScheduleEvent, error)
	Update(ctx context.Context, id string, updates *model.ScheduleEventUpdate) error
}

// WorkingHoursSource lists per-day hours; dates are YYYY-MM-DD.
type WorkingHoursSource interface {
	ListInRange(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error)
}

type Service struct {
	bookings     BookingSource
	events       EventSource
	workingHours WorkingHoursSource
	cfg          *config.Config
}

func NewService(
	bookings BookingSource,
	events EventSource,
	workingHours WorkingHoursSource,
	cfg *config.Config,
) *Service {
	return &Service{
		bookings:     bookings,
		events:       events,
		workingHours: workingHours,
		cfg:          cfg,
	}
}

// Load regenerates the display projection for [start, end). The three
// categories are fetched concurrently and appended bookings first, then
// schedule events, then working-hours blocks. An empty workerID loads every
// worker.
func (s *Service) Load(ctx context.Context, workerID string, start, end time.Time) ([]model.CalendarEvent, error) {
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end must be after start")
	}

	loc := s.cfg.Location()
	fromDate := start.In(loc).Format(timeutil.DateLayout)
	toDate := end.In(loc).Format(timeutil.DateLayout)

	var bookings []*model.Booking
	var events []*model.ScheduleEvent
	var hours []*model.WorkingHours
	var errBookings, errEvents, errHours error

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		bookings, errBookings = s.bookings.ListInRange(ctx, workerID, start, end)
	}()

	go func() {
		defer wg.Done()
		events, errEvents = s.events.ListInRange(ctx, workerID, start, end)
	}()

	go func() {
		defer wg.Done()
		hours, errHours = s.workingHours.ListInRange(ctx, workerID, fromDate, toDate)
	}()

	wg.Wait()

	if errBookings != nil {
		return nil, errBookings
	}
	if errEvents != nil {
		return nil, errEvents
	}
	if errHours != nil {
		return nil, errHours
	}

	projected := make([]model.CalendarEvent, 0, len(bookings)+len(events)+len(hours))
	for _, b := range bookings {
		projected = append(projected, projectBooking(b))
	}
	for _, ev := range events {
		projected = append(projected, projectScheduleEvent(ev))
	}
	for _, h := range hours {
		block, err := s.projectWorkingHours(h, loc)
		if err != nil {
			s.cfg.Log.Warn("Skipping malformed working hours block",
				"worker_id", h.WorkerID,
				"work_date", h.WorkDate,
				"error", err,
			)
			continue
		}
		projected = append(projected, block)
	}

	return projected, nil
}

// Move changes an entry's interval and returns the reloaded projection for
// the span both intervals touch. Working-hours blocks are not movable
// through the calendar. A failed move leaves the stored bounds untouched.
func (s *Service) Move(ctx context.Context, id string, kind model.CalendarKind, start, end time.Time, expectedVersion int64) ([]model.CalendarEvent, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Calendar event ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end must be after start")
	}

	switch kind {
	case model.KindBooking:
		existing, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		updated, err := s.bookings.UpdateTimes(ctx, id, start, end, expectedVersion)
		if err != nil {
			return nil, err
		}
		// The reload must still cover the vacated span when the booking
		// crossed into another day.
		reloadStart := dayStart(minTime(existing.StartTime, start), s.cfg.Location())
		return s.Load(ctx, updated.WorkerID, reloadStart, maxTime(existing.EndTime, end))

	case model.KindScheduleEvent:
		existing, err := s.events.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		updates := &model.ScheduleEventUpdate{
			StartTime: &start,
			EndTime:   &end,
		}
		if err := s.events.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		reloadStart := dayStart(minTime(existing.StartTime, start), s.cfg.Location())
		return s.Load(ctx, existing.WorkerID, reloadStart, maxTime(existing.EndTime, end))

	case model.KindWorkingHours:
		return nil, apperrors.InvalidInput("Working hours blocks cannot be moved through the calendar")

	default:
		return nil, apperrors.InvalidInput("Unknown calendar event kind: " + string(kind))
	}
}

func projectBooking(b *model.Booking) model.CalendarEvent {
	return model.CalendarEvent{
		ID:       b.ID,
		Title:    "Booking",
		Start:    b.StartTime,
		End:      b.EndTime,
		Kind:     model.KindBooking,
		Color:    bookingColor(b.Status),
		WorkerID: b.WorkerID,
		Status:   b.Status,
	}
}

func projectScheduleEvent(ev *model.ScheduleEvent) model.CalendarEvent {
	return model.CalendarEvent{
		ID:        ev.ID,
		Title:     ev.EventType,
		Start:     ev.StartTime,
		End:       ev.EndTime,
		Kind:      model.KindScheduleEvent,
		Color:     eventColor(ev.EventType),
		WorkerID:  ev.WorkerID,
		EventType: ev.EventType,
	}
}

func (s *Service) projectWorkingHours(h *model.WorkingHours, loc *time.Location) (model.CalendarEvent, error) {
	startClock, err := timeutil.ParseClock(h.StartTime)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	endClock, err := timeutil.ParseClock(h.EndTime)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	start, err := timeutil.Combine(h.WorkDate, startClock, loc)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	end, err := timeutil.Combine(h.WorkDate, endClock, loc)
	if err != nil {
		return model.CalendarEvent{}, err
	}

	return model.CalendarEvent{
		ID:       h.ID,
		Title:    "Working hours",
		Start:    start,
		End:      end,
		Kind:     model.KindWorkingHours,
		Color:    workingHoursColor,
		WorkerID: h.WorkerID,
	}, nil
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
