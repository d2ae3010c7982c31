package overdue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

type mockRecomputer struct {
	mock.Mock
}

func (m *mockRecomputer) RecomputeStatus(ctx context.Context, spaceID int64) error {
	args := m.Called(ctx, spaceID)
	return args.Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

var sweepNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func newSweeper(repo *mockBookingRepo, recomputer *mockRecomputer) *Sweeper {
	return NewSweeper(repo, recomputer, nopLogger{}, domain.DefaultCheckinGraceMinutes, domain.DefaultCheckoutGraceMinutes)
}

func TestSweep_PendingPastEnd(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	b := &domain.Booking{
		ID:        1,
		SpaceID:   10,
		Status:    domain.StatusPending,
		StartTime: sweepNow.Add(-3 * time.Hour),
		EndTime:   sweepNow.Add(-1 * time.Hour),
	}

	repo.On("Update", mock.Anything, b).Return(nil)
	recomputer.On("RecomputeStatus", mock.Anything, int64(10)).Return(nil)

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{b}, sweepNow)

	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, domain.StatusOverduePending, b.Status)
	repo.AssertExpectations(t)
	recomputer.AssertExpectations(t)
}

func TestSweep_ConfirmedMissedCheckin(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	overdueStart := sweepNow.Add(-time.Duration(domain.DefaultCheckinGraceMinutes+1) * time.Minute)
	b := &domain.Booking{
		ID:        1,
		SpaceID:   10,
		Status:    domain.StatusConfirmed,
		StartTime: overdueStart,
		EndTime:   overdueStart.Add(4 * time.Hour),
	}

	repo.On("Update", mock.Anything, b).Return(nil)
	recomputer.On("RecomputeStatus", mock.Anything, int64(10)).Return(nil)

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{b}, sweepNow)

	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, domain.StatusOverdueCheckin, b.Status)
}

func TestSweep_ConfirmedWithinGrace_NotTouched(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	b := &domain.Booking{
		ID:        1,
		SpaceID:   10,
		Status:    domain.StatusConfirmed,
		StartTime: sweepNow.Add(-10 * time.Minute),
		EndTime:   sweepNow.Add(2 * time.Hour),
	}

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{b}, sweepNow)

	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	repo.AssertNotCalled(t, "Update")
	recomputer.AssertNotCalled(t, "RecomputeStatus")
}

func TestSweep_CheckedInConfirmed_NotEscalated(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	checkIn := sweepNow.Add(-2 * time.Hour)
	b := &domain.Booking{
		ID:            1,
		SpaceID:       10,
		Status:        domain.StatusConfirmed,
		StartTime:     sweepNow.Add(-2 * time.Hour),
		EndTime:       sweepNow.Add(time.Hour),
		ActualCheckIn: &checkIn,
	}

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{b}, sweepNow)

	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestSweep_CheckedInMissedCheckout(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	checkIn := sweepNow.Add(-5 * time.Hour)
	b := &domain.Booking{
		ID:            1,
		SpaceID:       10,
		Status:        domain.StatusCheckedIn,
		StartTime:     sweepNow.Add(-5 * time.Hour),
		EndTime:       sweepNow.Add(-time.Duration(domain.DefaultCheckoutGraceMinutes+1) * time.Minute),
		ActualCheckIn: &checkIn,
	}

	repo.On("Update", mock.Anything, b).Return(nil)
	recomputer.On("RecomputeStatus", mock.Anything, int64(10)).Return(nil)

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{b}, sweepNow)

	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, domain.StatusOverdueCheckout, b.Status)
}

func TestSweep_DegenerateInterval_Cancelled(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	b := &domain.Booking{
		ID:      1,
		SpaceID: 10,
		Status:  domain.StatusConfirmed,
	}

	repo.On("Update", mock.Anything, b).Return(nil)
	recomputer.On("RecomputeStatus", mock.Anything, int64(10)).Return(nil)

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{b}, sweepNow)

	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, domain.StatusCancelled, b.Status)
	require.NotNil(t, b.CancellationReason)
	assert.Contains(t, *b.CancellationReason, "invalid booking interval")
}

func TestSweep_ExternalAndTerminal_Untouched(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	external := &domain.Booking{
		ID:        1,
		SpaceID:   10,
		Status:    domain.StatusExternal,
		StartTime: sweepNow.Add(-10 * time.Hour),
		EndTime:   sweepNow.Add(-8 * time.Hour),
	}
	cancelled := &domain.Booking{
		ID:      2,
		SpaceID: 10,
		Status:  domain.StatusCancelled,
	}

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{external, cancelled}, sweepNow)

	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestSweep_RecomputeFailure_DoesNotFailSweep(t *testing.T) {
	repo := new(mockBookingRepo)
	recomputer := new(mockRecomputer)
	sweeper := newSweeper(repo, recomputer)

	b := &domain.Booking{
		ID:        1,
		SpaceID:   10,
		Status:    domain.StatusPending,
		StartTime: sweepNow.Add(-3 * time.Hour),
		EndTime:   sweepNow.Add(-1 * time.Hour),
	}

	repo.On("Update", mock.Anything, b).Return(nil)
	recomputer.On("RecomputeStatus", mock.Anything, int64(10)).Return(assert.AnError)

	changed, err := sweeper.Sweep(context.Background(), 10, []*domain.Booking{b}, sweepNow)

	require.NoError(t, err)
	assert.Len(t, changed, 1)
}
