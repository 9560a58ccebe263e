package service

import (
	"context"
	"testing"

	whErrors "carebook/internal/workinghours/errors"
	"carebook/internal/workinghours/validator"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/logger"
	"carebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWorkingHoursRepo struct {
	getFn         func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error)
	upsertFn      func(ctx context.Context, entry *model.WorkingHours) error
	findByWorker  func(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error)
	findInRangeFn func(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error)
}

func (m *mockWorkingHoursRepo) Get(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
	return m.getFn(ctx, workerID, workDate)
}

func (m *mockWorkingHoursRepo) Upsert(ctx context.Context, entry *model.WorkingHours) error {
	return m.upsertFn(ctx, entry)
}

func (m *mockWorkingHoursRepo) FindByWorker(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error) {
	return m.findByWorker(ctx, workerID, fromDate, toDate)
}

func (m *mockWorkingHoursRepo) FindInRange(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error) {
	return m.findInRangeFn(ctx, workerID, fromDate, toDate)
}

func (m *mockWorkingHoursRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Service: "test"}),
	}
}

func newTestService(repo *mockWorkingHoursRepo) WorkingHoursService {
	cfg := testConfig()
	return NewWorkingHoursService(repo, validator.NewWorkingHoursValidator(cfg.Log), nil, cfg)
}

func TestSaveNormalizesTimes(t *testing.T) {
	var saved *model.WorkingHours
	repo := &mockWorkingHoursRepo{
		upsertFn: func(ctx context.Context, entry *model.WorkingHours) error {
			saved = entry
			return nil
		},
	}
	svc := newTestService(repo)

	entry := &model.WorkingHours{
		WorkerID:  "507f1f77bcf86cd799439011",
		WorkDate:  "2026-09-01",
		StartTime: "09:00",
		EndTime:   "17:30",
	}
	err := svc.Save(context.Background(), entry)
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, "09:00:00", saved.StartTime)
	assert.Equal(t, "17:30:00", saved.EndTime)
}

func TestSaveKeepsSecondPrecision(t *testing.T) {
	repo := &mockWorkingHoursRepo{
		upsertFn: func(ctx context.Context, entry *model.WorkingHours) error { return nil },
	}
	svc := newTestService(repo)

	entry := &model.WorkingHours{
		WorkerID:  "507f1f77bcf86cd799439011",
		WorkDate:  "2026-09-01",
		StartTime: "08:15:30",
		EndTime:   "16:45:05",
	}
	err := svc.Save(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, "08:15:30", entry.StartTime)
	assert.Equal(t, "16:45:05", entry.EndTime)
}

func TestSaveRejectsInvertedRange(t *testing.T) {
	repo := &mockWorkingHoursRepo{
		upsertFn: func(ctx context.Context, entry *model.WorkingHours) error {
			t.Fatal("upsert should not be reached")
			return nil
		},
	}
	svc := newTestService(repo)

	entry := &model.WorkingHours{
		WorkerID:  "507f1f77bcf86cd799439011",
		WorkDate:  "2026-09-01",
		StartTime: "17:00",
		EndTime:   "09:00",
	}
	err := svc.Save(context.Background(), entry)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestSaveRejectsMalformedClock(t *testing.T) {
	repo := &mockWorkingHoursRepo{}
	svc := newTestService(repo)

	entry := &model.WorkingHours{
		WorkerID:  "507f1f77bcf86cd799439011",
		WorkDate:  "2026-09-01",
		StartTime: "9am",
		EndTime:   "17:00",
	}
	err := svc.Save(context.Background(), entry)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestGetByWorkerAndDateNotFound(t *testing.T) {
	repo := &mockWorkingHoursRepo{
		getFn: func(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
			return nil, whErrors.ErrNotFound
		},
	}
	svc := newTestService(repo)

	_, err := svc.GetByWorkerAndDate(context.Background(), "507f1f77bcf86cd799439011", "2026-09-01")
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestGetByWorkerAndDateEmptyWorker(t *testing.T) {
	svc := newTestService(&mockWorkingHoursRepo{})

	_, err := svc.GetByWorkerAndDate(context.Background(), "", "2026-09-01")
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}
