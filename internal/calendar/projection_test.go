package calendar

import (
	"context"
	"testing"
	"time"

	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/logger"
	"carebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingSource struct {
	listFn        func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error)
	getFn         func(ctx context.Context, id string) (*model.Booking, error)
	updateTimesFn func(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error)
}

func (m *mockBookingSource) ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
	if m.listFn != nil {
		return m.listFn(ctx, workerID, start, end)
	}
	return nil, nil
}

func (m *mockBookingSource) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.getFn(ctx, id)
}

func (m *mockBookingSource) UpdateTimes(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error) {
	return m.updateTimesFn(ctx, id, start, end, expectedVersion)
}

type mockEventSource struct {
	listFn   func(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error)
	getFn    func(ctx context.Context, id string) (*model.ScheduleEvent, error)
	updateFn func(ctx context.Context, id string, updates *model.ScheduleEventUpdate) error
}

func (m *mockEventSource) ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, workerID, start, end)
	}
	return nil, nil
}

func (m *mockEventSource) GetByID(ctx context.Context, id string) (*model.ScheduleEvent, error) {
	return m.getFn(ctx, id)
}

func (m *mockEventSource) Update(ctx context.Context, id string, updates *model.ScheduleEventUpdate) error {
	return m.updateFn(ctx, id, updates)
}

type mockWorkingHoursSource struct {
	listFn func(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error)
}

func (m *mockWorkingHoursSource) ListInRange(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error) {
	if m.listFn != nil {
		return m.listFn(ctx, workerID, fromDate, toDate)
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		TimeZone: "UTC",
		Log:      logger.New(logger.Config{Level: logger.ERROR, Service: "test"}),
	}
}

func TestLoadProjectsAllThreeCategories(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	bookings := &mockBookingSource{
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
			return []*model.Booking{{
				ID:        "b1",
				WorkerID:  "w1",
				StartTime: day.Add(10 * time.Hour),
				EndTime:   day.Add(12 * time.Hour),
				Status:    model.BookingConfirmed,
			}}, nil
		},
	}
	events := &mockEventSource{
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error) {
			return []*model.ScheduleEvent{{
				ID:        "e1",
				WorkerID:  "w1",
				EventType: model.EventVacation,
				StartTime: day.Add(14 * time.Hour),
				EndTime:   day.Add(16 * time.Hour),
			}}, nil
		},
	}
	hours := &mockWorkingHoursSource{
		listFn: func(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error) {
			return []*model.WorkingHours{{
				ID:        "h1",
				WorkerID:  "w1",
				WorkDate:  "2026-09-01",
				StartTime: "09:00:00",
				EndTime:   "17:00:00",
			}}, nil
		},
	}

	svc := NewService(bookings, events, hours, testConfig())

	projected, err := svc.Load(context.Background(), "w1", day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, projected, 3)

	// Bookings first, then schedule events, then working hours.
	assert.Equal(t, model.KindBooking, projected[0].Kind)
	assert.Equal(t, "#4CAF50", projected[0].Color)
	assert.Equal(t, model.BookingConfirmed, projected[0].Status)

	assert.Equal(t, model.KindScheduleEvent, projected[1].Kind)
	assert.Equal(t, "#7C4DFF", projected[1].Color)
	assert.Equal(t, model.EventVacation, projected[1].EventType)

	assert.Equal(t, model.KindWorkingHours, projected[2].Kind)
	assert.Equal(t, "#E2E8F0", projected[2].Color)
	assert.Equal(t, day.Add(9*time.Hour), projected[2].Start)
	assert.Equal(t, day.Add(17*time.Hour), projected[2].End)
}

func TestBookingColors(t *testing.T) {
	tests := []struct {
		status string
		color  string
	}{
		{model.BookingPending, "#FFA500"},
		{model.BookingConfirmed, "#4CAF50"},
		{model.BookingCancelled, "#F44336"},
		{model.BookingCompleted, "#2196F3"},
		{"archived", "#9E9E9E"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.color, bookingColor(tt.status), tt.status)
	}
}

func TestEventColors(t *testing.T) {
	tests := []struct {
		eventType string
		color     string
	}{
		{model.EventSickLeave, "#FF5252"},
		{model.EventVacation, "#7C4DFF"},
		{model.EventBusy, "#FF9800"},
		{model.EventBreak, "#607D8B"},
		{"training", "#9E9E9E"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.color, eventColor(tt.eventType), tt.eventType)
	}
}

func TestMoveBookingReloadsProjection(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	newStart := day.Add(13 * time.Hour)
	newEnd := day.Add(15 * time.Hour)

	bookings := &mockBookingSource{
		getFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:        id,
				WorkerID:  "w1",
				StartTime: day.Add(10 * time.Hour),
				EndTime:   day.Add(12 * time.Hour),
				Status:    model.BookingConfirmed,
				Version:   2,
			}, nil
		},
		updateTimesFn: func(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error) {
			assert.Equal(t, int64(2), expectedVersion)
			return &model.Booking{
				ID:        id,
				WorkerID:  "w1",
				StartTime: start,
				EndTime:   end,
				Status:    model.BookingConfirmed,
				Version:   3,
			}, nil
		},
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
			assert.Equal(t, "w1", workerID)
			return []*model.Booking{{
				ID:        "b1",
				WorkerID:  workerID,
				StartTime: newStart,
				EndTime:   newEnd,
				Status:    model.BookingConfirmed,
			}}, nil
		},
	}

	svc := NewService(bookings, &mockEventSource{}, &mockWorkingHoursSource{}, testConfig())

	projected, err := svc.Move(context.Background(), "b1", model.KindBooking, newStart, newEnd, 2)
	require.NoError(t, err)

	require.Len(t, projected, 1)
	assert.Equal(t, newStart, projected[0].Start)
}

func TestMoveBookingAcrossDaysReloadsVacatedDay(t *testing.T) {
	oldDay := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	newDay := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	newStart := newDay.Add(10 * time.Hour)
	newEnd := newDay.Add(11 * time.Hour)

	var reloadStart, reloadEnd time.Time
	bookings := &mockBookingSource{
		getFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:        id,
				WorkerID:  "w1",
				StartTime: oldDay.Add(10 * time.Hour),
				EndTime:   oldDay.Add(11 * time.Hour),
				Status:    model.BookingConfirmed,
				Version:   1,
			}, nil
		},
		updateTimesFn: func(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error) {
			return &model.Booking{
				ID:        id,
				WorkerID:  "w1",
				StartTime: start,
				EndTime:   end,
				Status:    model.BookingConfirmed,
				Version:   2,
			}, nil
		},
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
			reloadStart, reloadEnd = start, end
			return nil, nil
		},
	}

	svc := NewService(bookings, &mockEventSource{}, &mockWorkingHoursSource{}, testConfig())

	_, err := svc.Move(context.Background(), "b1", model.KindBooking, newStart, newEnd, 1)
	require.NoError(t, err)

	// The vacated day must be part of the reloaded span or the caller keeps
	// the stale block on the old day.
	assert.Equal(t, oldDay, reloadStart)
	assert.Equal(t, newEnd, reloadEnd)
}

func TestMoveBookingConflictLeavesBoundsUntouched(t *testing.T) {
	bookings := &mockBookingSource{
		getFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:        id,
				WorkerID:  "w1",
				StartTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
				EndTime:   time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
				Status:    model.BookingConfirmed,
				Version:   2,
			}, nil
		},
		updateTimesFn: func(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error) {
			return nil, apperrors.Conflict("Booking was modified by another request, reload and retry")
		},
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
			t.Fatal("a failed move must not reload")
			return nil, nil
		},
	}

	svc := NewService(bookings, &mockEventSource{}, &mockWorkingHoursSource{}, testConfig())

	start := time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC)
	_, err := svc.Move(context.Background(), "b1", model.KindBooking, start, start.Add(time.Hour), 1)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestMoveWorkingHoursRejected(t *testing.T) {
	svc := NewService(&mockBookingSource{}, &mockEventSource{}, &mockWorkingHoursSource{}, testConfig())

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	_, err := svc.Move(context.Background(), "h1", model.KindWorkingHours, start, start.Add(8*time.Hour), 0)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestMoveScheduleEvent(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	existing := &model.ScheduleEvent{
		ID:        "e1",
		WorkerID:  "w1",
		EventType: model.EventBusy,
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
	}

	var gotUpdate *model.ScheduleEventUpdate
	events := &mockEventSource{
		getFn: func(ctx context.Context, id string) (*model.ScheduleEvent, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, id string, updates *model.ScheduleEventUpdate) error {
			gotUpdate = updates
			return nil
		},
	}

	svc := NewService(&mockBookingSource{}, events, &mockWorkingHoursSource{}, testConfig())

	newStart := day.Add(15 * time.Hour)
	_, err := svc.Move(context.Background(), "e1", model.KindScheduleEvent, newStart, newStart.Add(time.Hour), 0)
	require.NoError(t, err)

	require.NotNil(t, gotUpdate)
	assert.Equal(t, newStart, *gotUpdate.StartTime)
}
