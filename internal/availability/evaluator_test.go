package availability

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/logger"
	"carebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWorkingHours struct {
	getFn func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error)
}

func (m *mockWorkingHours) GetByWorkerAndDate(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
	return m.getFn(ctx, workerID, workDate)
}

type mockBookings struct {
	listFn func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error)
}

func (m *mockBookings) ListActiveForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
	if m.listFn != nil {
		return m.listFn(ctx, workerID, start, end)
	}
	return nil, nil
}

type mockEvents struct {
	listFn func(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error)
}

func (m *mockEvents) ListForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, workerID, start, end)
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		TimeZone:       "UTC",
		EventConflicts: true,
		Log:            logger.New(logger.Config{Level: logger.ERROR, Service: "test"}),
	}
}

func nineToFive(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
	return &model.WorkingHours{
		WorkerID:  workerID,
		WorkDate:  workDate,
		StartTime: "09:00:00",
		EndTime:   "17:00:00",
	}, nil
}

func window(date, start, end string) model.TimeWindow {
	return model.TimeWindow{Date: date, StartTime: start, EndTime: end}
}

func TestEvaluateAvailableWindow(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	require.Len(t, result.Windows, 1)
	assert.Equal(t, Available, result.Windows[0].Classification)
	assert.Equal(t, Available, result.Overall)
}

func TestEvaluateNoWorkingHours(t *testing.T) {
	wh := &mockWorkingHours{
		getFn: func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
			return nil, apperrors.NotFoundWithID("Working hours", workerID+"/"+workDate)
		},
	}
	e := NewEvaluator(wh, &mockBookings{}, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Unavailable, result.Windows[0].Classification)
	assert.Equal(t, "no working hours for requested day", result.Windows[0].Reason)
	assert.Equal(t, Unavailable, result.Overall)
}

func TestEvaluatePartialContainment(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	// Starts inside working hours, runs past their end.
	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "16:00", "19:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, PartiallyAvailable, result.Windows[0].Classification)
	assert.Contains(t, result.Windows[0].Reason, "09:00:00")
	assert.Contains(t, result.Windows[0].Reason, "17:00:00")
}

func TestEvaluateOutsideWorkingHours(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "18:00", "20:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Unavailable, result.Windows[0].Classification)
	assert.Equal(t, "outside working hours", result.Windows[0].Reason)
}

func TestEvaluateExactWorkingHoursBoundsAreAvailable(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "09:00", "17:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Available, result.Windows[0].Classification)
}

func TestEvaluateBookingConflict(t *testing.T) {
	bookings := &mockBookings{
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
			s := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
			return []*model.Booking{{
				WorkerID:  workerID,
				StartTime: s,
				EndTime:   s.Add(time.Hour),
				Status:    model.BookingConfirmed,
			}}, nil
		},
	}
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, bookings, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Unavailable, result.Windows[0].Classification)
	assert.Equal(t, "conflicting booking", result.Windows[0].Reason)
}

func TestEvaluateAbuttingBookingDoesNotConflict(t *testing.T) {
	bookings := &mockBookings{
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
			// Ends exactly when the requested window starts.
			s := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
			return []*model.Booking{{
				WorkerID:  workerID,
				StartTime: s,
				EndTime:   s.Add(time.Hour),
				Status:    model.BookingConfirmed,
			}}, nil
		},
	}
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, bookings, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Available, result.Windows[0].Classification)
}

func TestEvaluateScheduleEventConflict(t *testing.T) {
	events := &mockEvents{
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error) {
			s := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)
			return []*model.ScheduleEvent{{
				WorkerID:  workerID,
				EventType: model.EventSickLeave,
				StartTime: s,
				EndTime:   s.Add(2 * time.Hour),
			}}, nil
		},
	}
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, events, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Unavailable, result.Windows[0].Classification)
	assert.Equal(t, "conflicting schedule event", result.Windows[0].Reason)
}

func TestEvaluateEventConflictsDisabled(t *testing.T) {
	events := &mockEvents{
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error) {
			t.Fatal("schedule events should not be read when event conflicts are disabled")
			return nil, nil
		},
	}
	cfg := testConfig()
	cfg.EventConflicts = false
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, events, nil, cfg)

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Available, result.Windows[0].Classification)
}

func TestEvaluateDegradesOnReadFailure(t *testing.T) {
	wh := &mockWorkingHours{
		getFn: func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
			return nil, apperrors.Persistence("working hours", "lookup", errors.New("connection reset"))
		},
	}
	e := NewEvaluator(wh, &mockBookings{}, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Unavailable, result.Windows[0].Classification)
	assert.Equal(t, "availability could not be determined", result.Windows[0].Reason)
}

func TestEvaluateMixedWindowsRollup(t *testing.T) {
	bookings := &mockBookings{
		listFn: func(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
			// Blocks the morning only.
			s := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
			return []*model.Booking{{
				WorkerID:  workerID,
				StartTime: s,
				EndTime:   s.Add(time.Hour),
				Status:    model.BookingConfirmed,
			}}, nil
		},
	}
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, bookings, &mockEvents{}, nil, testConfig())

	result, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "11:00"),
		window("2026-09-01", "13:00", "15:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, Unavailable, result.Windows[0].Classification)
	assert.Equal(t, Available, result.Windows[1].Classification)
	assert.Equal(t, PartiallyAvailable, result.Overall)
}

func TestEvaluateNormalizesClockNotation(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	short, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)
	long, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "10:00:00", "12:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, short.Windows[0].Window, long.Windows[0].Window)
	assert.Equal(t, short.Windows[0].Classification, long.Windows[0].Classification)
}

func TestEvaluateRejectsInvalidWindow(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	_, err := e.Evaluate(context.Background(), "w1", []model.TimeWindow{
		window("2026-09-01", "12:00", "10:00"),
	})
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestGenerationIncreasesPerEvaluation(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	windows := []model.TimeWindow{window("2026-09-01", "10:00", "12:00")}
	first, err := e.Evaluate(context.Background(), "w1", windows)
	require.NoError(t, err)
	second, err := e.Evaluate(context.Background(), "w1", windows)
	require.NoError(t, err)

	assert.Greater(t, second.Generation, first.Generation)
	assert.False(t, second.Stale)
}

func TestGenerationIsScopedPerWorker(t *testing.T) {
	e := NewEvaluator(&mockWorkingHours{getFn: nineToFive}, &mockBookings{}, &mockEvents{}, nil, testConfig())

	windows := []model.TimeWindow{window("2026-09-01", "10:00", "12:00")}
	first, err := e.Evaluate(context.Background(), "w1", windows)
	require.NoError(t, err)
	other, err := e.Evaluate(context.Background(), "w2", windows)
	require.NoError(t, err)
	again, err := e.Evaluate(context.Background(), "w1", windows)
	require.NoError(t, err)

	// Another worker's evaluation starts its own sequence.
	assert.Equal(t, uint64(1), first.Generation)
	assert.Equal(t, uint64(1), other.Generation)
	assert.False(t, other.Stale)
	assert.Equal(t, uint64(2), again.Generation)
	assert.False(t, again.Stale)
}

func TestConcurrentEvaluationOfAnotherWorkerIsNotStale(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	wh := &mockWorkingHours{
		getFn: func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
			if workerID == "slow" {
				close(entered)
				<-release
			}
			return nineToFive(ctx, workerID, workDate)
		},
	}
	e := NewEvaluator(wh, &mockBookings{}, &mockEvents{}, nil, testConfig())
	windows := []model.TimeWindow{window("2026-09-01", "10:00", "12:00")}

	type evalOut struct {
		result *Result
		err    error
	}
	done := make(chan evalOut, 1)
	go func() {
		result, err := e.Evaluate(context.Background(), "slow", windows)
		done <- evalOut{result, err}
	}()
	<-entered

	// Completes while the slow worker's evaluation is still in flight.
	fast, err := e.Evaluate(context.Background(), "fast", windows)
	require.NoError(t, err)
	assert.False(t, fast.Stale)

	close(release)
	slow := <-done
	require.NoError(t, slow.err)
	assert.False(t, slow.result.Stale)
	assert.Equal(t, uint64(1), slow.result.Generation)
	assert.Equal(t, Available, slow.result.Overall)
}

func TestSupersededEvaluationIsStale(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	wh := &mockWorkingHours{
		getFn: func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
			if calls.Add(1) == 1 {
				close(entered)
				<-release
			}
			return nineToFive(ctx, workerID, workDate)
		},
	}
	e := NewEvaluator(wh, &mockBookings{}, &mockEvents{}, nil, testConfig())
	windows := []model.TimeWindow{window("2026-09-01", "10:00", "12:00")}

	type evalOut struct {
		result *Result
		err    error
	}
	done := make(chan evalOut, 1)
	go func() {
		result, err := e.Evaluate(context.Background(), "w1", windows)
		done <- evalOut{result, err}
	}()
	<-entered

	// A newer evaluation for the same worker overtakes the blocked one.
	newer, err := e.Evaluate(context.Background(), "w1", windows)
	require.NoError(t, err)
	assert.False(t, newer.Stale)
	assert.Equal(t, uint64(2), newer.Generation)

	close(release)
	overtaken := <-done
	require.NoError(t, overtaken.err)
	assert.True(t, overtaken.result.Stale)
	assert.Equal(t, uint64(1), overtaken.result.Generation)
}

func TestRankOrdersByAvailability(t *testing.T) {
	wh := &mockWorkingHours{
		getFn: func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
			if workerID == "idle" {
				return nineToFive(ctx, workerID, workDate)
			}
			return nil, apperrors.NotFoundWithID("Working hours", workerID+"/"+workDate)
		},
	}
	e := NewEvaluator(wh, &mockBookings{}, &mockEvents{}, nil, testConfig())

	results, err := e.Rank(context.Background(), []string{"offday", "idle"}, []model.TimeWindow{
		window("2026-09-01", "10:00", "12:00"),
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "idle", results[0].WorkerID)
	assert.Equal(t, Available, results[0].Overall)
	assert.Equal(t, "offday", results[1].WorkerID)

	// Sibling evaluations inside one ranking never mark each other stale.
	assert.False(t, results[0].Stale)
	assert.False(t, results[1].Stale)
}
