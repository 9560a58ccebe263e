package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "carebook/internal/bookings/errors"
	"carebook/internal/bookings/repository"
	"carebook/internal/bookings/validator"
	"carebook/pkg/cache"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/kafka"
	"carebook/pkg/model"
	"carebook/pkg/sanitizer"
	"carebook/pkg/timeutil"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) error
	UpdateTimes(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	SearchByWorker(ctx context.Context, workerID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	ListActiveForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error)
	ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	validator *validator.BookingValidator
	cache     *cache.AvailabilityCache
	producer  *kafka.Producer
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	validator *validator.BookingValidator,
	availabilityCache *cache.AvailabilityCache,
	producer *kafka.Producer,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		cache:     availabilityCache,
		producer:  producer,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	// Advisory lock keeps two concurrent requests for the same worker/slot
	// from both passing the overlap check.
	lockID, err := s.acquireSlotLock(ctx, booking.WorkerID, booking.StartTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Persistence("booking", "create", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}

	s.invalidateAvailability(ctx, booking.WorkerID, booking.StartTime, booking.EndTime)
	s.publishEvent(ctx, model.EventBookingCreated, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"worker_id", booking.WorkerID,
		"client_id", booking.ClientID,
		"start_time", booking.StartTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Persistence("booking", "lookup", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Persistence("booking", "count", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Persistence("booking", "list", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}
	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, merged); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Persistence("booking", "update", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return err
	}

	// Both the old and the new interval may have cached classifications.
	s.invalidateAvailability(ctx, existing.WorkerID, existing.StartTime, existing.EndTime)
	s.invalidateAvailability(ctx, merged.WorkerID, merged.StartTime, merged.EndTime)
	s.publishEvent(ctx, model.EventBookingUpdated, merged)

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return nil
}

// UpdateTimes moves a booking to a new interval, guarded by the caller's
// expected version. A stale version is a conflict, not a silent overwrite.
func (s *bookingService) UpdateTimes(ctx context.Context, id string, start, end time.Time, expectedVersion int64) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end_time must be after start_time")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		probe := *existing
		probe.StartTime = start
		probe.EndTime = end
		if err := s.verifyNoConflict(sessCtx, &probe); err != nil {
			return err
		}

		if err := s.repo.UpdateTimes(sessCtx, id, start, end, expectedVersion); err != nil {
			if errors.Is(err, bookingserrors.ErrVersionMismatch) {
				return apperrors.Conflict("Booking was modified by another request, reload and retry")
			}
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Persistence("booking", "update times", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking times", "id", id, "expected_version", expectedVersion, "error", err)
		return nil, err
	}

	s.invalidateAvailability(ctx, existing.WorkerID, existing.StartTime, existing.EndTime)
	s.invalidateAvailability(ctx, existing.WorkerID, start, end)

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, model.EventBookingTimesChanged, updated)

	s.cfg.Log.Info("Booking times updated",
		"id", id,
		"start_time", start,
		"end_time", end,
		"version", updated.Version,
	)
	return updated, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Persistence("booking", "delete", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateAvailability(ctx, existing.WorkerID, existing.StartTime, existing.EndTime)
	s.publishEvent(ctx, model.EventBookingDeleted, existing)

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

func (s *bookingService) SearchByWorker(ctx context.Context, workerID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if workerID == "" {
		return nil, 0, apperrors.InvalidInput("Worker ID is required")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByWorker(ctx, workerID, status, startTime, endTime)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings by worker",
				"worker_id", workerID,
				"error", err,
			)
			errCount = apperrors.Persistence("booking", "count", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByWorker(ctx, workerID, status, startTime, endTime, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search bookings",
				"worker_id", workerID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Persistence("booking", "search", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Booking search completed",
		"worker_id", workerID,
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

// ListActiveForWorker returns the confirmed bookings overlapping
// [start, end). Only confirmed bookings block a worker's time.
func (s *bookingService) ListActiveForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
	if workerID == "" {
		return nil, apperrors.InvalidInput("Worker ID is required")
	}

	bookings, err := s.repo.FindByWorker(ctx, workerID, model.BookingConfirmed, &start, &end, config.DefaultPaginationLimit, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list active bookings", "worker_id", workerID, "error", err)
		return nil, apperrors.Persistence("booking", "list active", err)
	}

	return bookings, nil
}

// ListInRange returns bookings of any status overlapping [start, end). An
// empty workerID matches all workers.
func (s *bookingService) ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByWorker(ctx, workerID, "", &start, &end, config.DefaultPaginationLimit, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings in range", "worker_id", workerID, "error", err)
		return nil, apperrors.Persistence("booking", "list range", err)
	}

	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.Notes = sanitizer.NormalizeNotes(b.Notes)
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingPending
	}
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// verifyNoConflict rejects a confirmed booking that overlaps another
// confirmed booking for the same worker. Pending bookings hold no time.
func (s *bookingService) verifyNoConflict(ctx context.Context, booking *model.Booking) error {
	if booking.Status != model.BookingConfirmed {
		return nil
	}

	const maxOverlapCheck = 30
	existing, err := s.repo.FindByWorker(ctx, booking.WorkerID, model.BookingConfirmed, &booking.StartTime, &booking.EndTime, maxOverlapCheck, 0)
	if err != nil {
		return apperrors.Persistence("booking", "conflict check", err)
	}

	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		if timeutil.Overlaps(b.StartTime, b.EndTime, booking.StartTime, booking.EndTime) {
			return apperrors.Conflict(fmt.Sprintf(
				"Booking time overlaps with existing booking (%s - %s)",
				b.StartTime.Format(time.RFC3339),
				b.EndTime.Format(time.RFC3339),
			))
		}
	}
	return nil
}

func (s *bookingService) invalidateAvailability(ctx context.Context, workerID string, start, end time.Time) {
	s.cache.InvalidateRange(ctx, workerID, start, end, s.cfg.Location())
}

// publishEvent emits a change notification. Publishing is best effort; a
// broker failure never rolls back the write.
func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.producer == nil {
		return
	}

	event := model.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		WorkerID:   booking.WorkerID,
		ClientID:   booking.ClientID,
		StartTime:  booking.StartTime,
		EndTime:    booking.EndTime,
		Status:     booking.Status,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(booking.WorkerID).
		WithValue(event).
		WithEventType(eventType).
		WithSource("scheduler").
		Build()

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

// acquireSlotLock creates an advisory lock to prevent concurrent booking creation
// Returns the lock ID if successful, or conflict error if lock already exists
func (s *bookingService) acquireSlotLock(ctx context.Context, workerID string, startTime time.Time) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s_%d", sanitizer.SanitizeKey(workerID), startTime.Unix())

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Persistence("booking lock", "acquire", err)
	}

	return lockID, nil
}

// releaseSlotLock removes the advisory lock
func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
