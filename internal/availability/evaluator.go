package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"carebook/pkg/cache"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/model"
	"carebook/pkg/timeutil"
)

const (
	Available          = "available"
	PartiallyAvailable = "partially_available"
	Unavailable        = "unavailable"
)

// WorkingHoursRegistry resolves a worker's hours for one day. A not-found
// result means the worker has no hours registered for that day.
type WorkingHoursRegistry interface {
	GetByWorkerAndDate(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error)
}

// BookingRegistry lists the confirmed bookings overlapping [start, end).
type BookingRegistry interface {
	ListActiveForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error)
}

// ScheduleEventRegistry lists the schedule events overlapping [start, end).
type ScheduleEventRegistry interface {
	ListForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error)
}

// WindowResult is one requested window's verdict.
type WindowResult struct {
	Window         model.TimeWindow `json:"window"`
	Classification string           `json:"classification"`
	Reason         string           `json:"reason,omitempty"`
}

// Result is a full evaluation for one worker. Generation is a monotonic
// token scoped to that worker; a result whose generation is below the
// worker's current one was overtaken by a newer request for the same worker
// and should be discarded by the caller. Evaluations of other workers never
// affect it.
type Result struct {
	WorkerID   string         `json:"worker_id"`
	Windows    []WindowResult `json:"windows"`
	Overall    string         `json:"overall"`
	Generation uint64         `json:"generation"`
	Stale      bool           `json:"stale"`
}

type Evaluator struct {
	workingHours WorkingHoursRegistry
	bookings     BookingRegistry
	events       ScheduleEventRegistry
	cache        *cache.AvailabilityCache
	cfg          *config.Config

	mu          sync.Mutex
	generations map[string]uint64
}

func NewEvaluator(
	workingHours WorkingHoursRegistry,
	bookings BookingRegistry,
	events ScheduleEventRegistry,
	availabilityCache *cache.AvailabilityCache,
	cfg *config.Config,
) *Evaluator {
	return &Evaluator{
		workingHours: workingHours,
		bookings:     bookings,
		events:       events,
		cache:        availabilityCache,
		cfg:          cfg,
		generations:  make(map[string]uint64),
	}
}

func (e *Evaluator) nextGeneration(workerID string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generations[workerID]++
	return e.generations[workerID]
}

func (e *Evaluator) currentGeneration(workerID string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generations[workerID]
}

// Evaluate classifies every requested window for one worker. Windows are
// evaluated concurrently and joined before the rollup, so the result is
// always complete. Registry read failures degrade the affected window to
// unavailable instead of failing the whole evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, workerID string, windows []model.TimeWindow) (*Result, error) {
	if workerID == "" {
		return nil, apperrors.InvalidInput("Worker ID cannot be empty")
	}
	if len(windows) == 0 {
		return nil, apperrors.InvalidInput("At least one time window is required")
	}

	normalized, err := normalizeWindows(windows)
	if err != nil {
		return nil, err
	}

	gen := e.nextGeneration(workerID)

	results := make([]WindowResult, len(normalized))
	var wg sync.WaitGroup
	wg.Add(len(normalized))

	for i, win := range normalized {
		go func(i int, win model.TimeWindow) {
			defer wg.Done()
			results[i] = e.evaluateWindow(ctx, workerID, win)
		}(i, win)
	}

	wg.Wait()

	result := &Result{
		WorkerID:   workerID,
		Windows:    results,
		Overall:    rollup(results),
		Generation: gen,
		Stale:      e.currentGeneration(workerID) != gen,
	}

	e.cfg.Log.Debug("Availability evaluated",
		"worker_id", workerID,
		"windows", len(windows),
		"overall", result.Overall,
		"generation", gen,
		"stale", result.Stale,
	)
	return result, nil
}

// Rank evaluates several workers against the same windows and orders them
// best first: most available windows, then most partially available.
func (e *Evaluator) Rank(ctx context.Context, workerIDs []string, windows []model.TimeWindow) ([]*Result, error) {
	if len(workerIDs) == 0 {
		return nil, apperrors.InvalidInput("At least one worker ID is required")
	}

	results := make([]*Result, len(workerIDs))
	errs := make([]error, len(workerIDs))
	var wg sync.WaitGroup
	wg.Add(len(workerIDs))

	for i, workerID := range workerIDs {
		go func(i int, workerID string) {
			defer wg.Done()
			results[i], errs[i] = e.Evaluate(ctx, workerID, windows)
		}(i, workerID)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		ai, pi := tally(results[i])
		aj, pj := tally(results[j])
		if ai != aj {
			return ai > aj
		}
		return pi > pj
	})

	return results, nil
}

func (e *Evaluator) evaluateWindow(ctx context.Context, workerID string, win model.TimeWindow) WindowResult {
	if cached := e.cache.Get(ctx, workerID, win.Date, win.StartTime, win.EndTime); cached != "" {
		return WindowResult{Window: win, Classification: cached}
	}

	result := e.classify(ctx, workerID, win)
	e.cache.Set(ctx, workerID, win.Date, win.StartTime, win.EndTime, result.Classification)
	return result
}

func (e *Evaluator) classify(ctx context.Context, workerID string, win model.TimeWindow) WindowResult {
	// Normalized upstream, cannot fail here.
	winStart, _ := timeutil.ParseClock(win.StartTime)
	winEnd, _ := timeutil.ParseClock(win.EndTime)

	hours, err := e.workingHours.GetByWorkerAndDate(ctx, workerID, win.Date)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.CodeNotFound {
			return WindowResult{
				Window:         win,
				Classification: Unavailable,
				Reason:         "no working hours for requested day",
			}
		}
		e.cfg.Log.Error("Working hours lookup failed during evaluation",
			"worker_id", workerID,
			"date", win.Date,
			"error", err,
		)
		return e.degrade(win)
	}

	hStart, err1 := timeutil.ParseClock(hours.StartTime)
	hEnd, err2 := timeutil.ParseClock(hours.EndTime)
	if err1 != nil || err2 != nil {
		e.cfg.Log.Error("Stored working hours are malformed",
			"worker_id", workerID,
			"date", win.Date,
			"start_time", hours.StartTime,
			"end_time", hours.EndTime,
		)
		return e.degrade(win)
	}

	if !timeutil.OverlapsClock(hStart, hEnd, winStart, winEnd) {
		return WindowResult{
			Window:         win,
			Classification: Unavailable,
			Reason:         "outside working hours",
		}
	}

	if !timeutil.Contains(hStart, hEnd, winStart, winEnd) {
		return WindowResult{
			Window:         win,
			Classification: PartiallyAvailable,
			Reason:         fmt.Sprintf("working hours are %s - %s", hours.StartTime, hours.EndTime),
		}
	}

	loc := e.cfg.Location()
	start, err1 := timeutil.Combine(win.Date, winStart, loc)
	end, err2 := timeutil.Combine(win.Date, winEnd, loc)
	if err1 != nil || err2 != nil {
		return e.degrade(win)
	}

	bookings, err := e.bookings.ListActiveForWorker(ctx, workerID, start, end)
	if err != nil {
		e.cfg.Log.Error("Booking lookup failed during evaluation",
			"worker_id", workerID,
			"date", win.Date,
			"error", err,
		)
		return e.degrade(win)
	}
	for _, b := range bookings {
		if timeutil.Overlaps(b.StartTime, b.EndTime, start, end) {
			return WindowResult{
				Window:         win,
				Classification: Unavailable,
				Reason:         "conflicting booking",
			}
		}
	}

	if e.cfg.EventConflicts {
		events, err := e.events.ListForWorker(ctx, workerID, start, end)
		if err != nil {
			e.cfg.Log.Error("Schedule event lookup failed during evaluation",
				"worker_id", workerID,
				"date", win.Date,
				"error", err,
			)
			return e.degrade(win)
		}
		for _, ev := range events {
			if timeutil.Overlaps(ev.StartTime, ev.EndTime, start, end) {
				return WindowResult{
					Window:         win,
					Classification: Unavailable,
					Reason:         "conflicting schedule event",
				}
			}
		}
	}

	return WindowResult{Window: win, Classification: Available}
}

// degrade is the failure verdict: never guess available when the registries
// cannot be read.
func (e *Evaluator) degrade(win model.TimeWindow) WindowResult {
	return WindowResult{
		Window:         win,
		Classification: Unavailable,
		Reason:         "availability could not be determined",
	}
}

func normalizeWindows(windows []model.TimeWindow) ([]model.TimeWindow, error) {
	normalized := make([]model.TimeWindow, len(windows))
	for i, win := range windows {
		if _, err := time.Parse(timeutil.DateLayout, win.Date); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Invalid window date %q, want YYYY-MM-DD", win.Date))
		}
		start, err := timeutil.ParseClock(win.StartTime)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid window start_time: " + err.Error())
		}
		end, err := timeutil.ParseClock(win.EndTime)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid window end_time: " + err.Error())
		}
		if end <= start {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Window end_time %s must be after start_time %s", win.EndTime, win.StartTime))
		}
		normalized[i] = model.TimeWindow{
			Date:      win.Date,
			StartTime: start.String(),
			EndTime:   end.String(),
		}
	}
	return normalized, nil
}

func rollup(windows []WindowResult) string {
	available, partial := 0, 0
	for _, w := range windows {
		switch w.Classification {
		case Available:
			available++
		case PartiallyAvailable:
			partial++
		}
	}
	switch {
	case available == len(windows):
		return Available
	case available == 0 && partial == 0:
		return Unavailable
	default:
		return PartiallyAvailable
	}
}

func tally(r *Result) (available, partial int) {
	for _, w := range r.Windows {
		switch w.Classification {
		case Available:
			available++
		case PartiallyAvailable:
			partial++
		}
	}
	return available, partial
}
