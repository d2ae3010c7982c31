package confirm_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/conflicts"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/ptr"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetBySpaceID(ctx context.Context, spaceID int64, includeInactive bool) ([]*domain.Booking, error) {
	args := m.Called(ctx, spaceID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

type mockSpaceClient struct {
	mock.Mock
}

func (m *mockSpaceClient) GetSpace(ctx context.Context, spaceID int64) (*spaceservice.Space, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spaceservice.Space), args.Error(1)
}

func (m *mockSpaceClient) RecomputeStatus(ctx context.Context, spaceID int64) error {
	args := m.Called(ctx, spaceID)
	return args.Error(0)
}

type mockUserClient struct {
	mock.Mock
}

func (m *mockUserClient) GetUser(ctx context.Context, userID int64) (*userservice.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userservice.User), args.Error(1)
}

type mockNotifyClient struct {
	mock.Mock
}

func (m *mockNotifyClient) SendBookingConfirmation(ctx context.Context, msg *notifyservice.ConfirmationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockNotifyClient) SendBookingCancellation(ctx context.Context, msg *notifyservice.CancellationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type passthroughTxManager struct{}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

const (
	ownerID    = int64(1)
	customerID = int64(100)
	spaceID    = int64(10)
	bookingID  = int64(42)
)

type fixture struct {
	repo   *mockBookingRepo
	spaces *mockSpaceClient
	users  *mockUserClient
	notify *mockNotifyClient
	uc     *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := new(mockBookingRepo)
	spaces := new(mockSpaceClient)
	users := new(mockUserClient)
	notify := new(mockNotifyClient)

	uc := NewUseCase(
		repo,
		spaces,
		users,
		notify,
		conflicts.NewDetector(),
		passthroughTxManager{},
		&fixedTimeProvider{now: testNow},
		time.UTC,
		nopLogger{},
	)

	return &fixture{repo: repo, spaces: spaces, users: users, notify: notify, uc: uc}
}

func testSpace() *spaceservice.Space {
	return &spaceservice.Space{
		ID:      spaceID,
		OwnerID: ownerID,
		Name:    "Loft A",
		Status:  spaceservice.SpaceStatusAvailable,
	}
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:                bookingID,
		SpaceID:           spaceID,
		UserID:            ptr.Ptr(customerID),
		StartTime:         testNow.Add(24 * time.Hour),
		EndTime:           testNow.Add(26 * time.Hour),
		Status:            domain.StatusPending,
		BookingCode:       "AB12CD34",
		NotificationEmail: "ivan@example.com",
	}
}

func TestExecute_ConfirmsAndCancelsCompetitors(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking()
	competitor := &domain.Booking{
		ID:                77,
		SpaceID:           spaceID,
		StartTime:         booking.StartTime.Add(30 * time.Minute),
		EndTime:           booking.EndTime.Add(time.Hour),
		Status:            domain.StatusPending,
		BookingCode:       "ZZ99XX11",
		NotificationEmail: "petr@example.com",
	}

	f.repo.On("GetByID", mock.Anything, bookingID).Return(booking, nil)
	f.spaces.On("GetSpace", mock.Anything, spaceID).Return(testSpace(), nil)
	f.repo.On("GetBySpaceID", mock.Anything, spaceID, false).
		Return([]*domain.Booking{booking, competitor}, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetUser", mock.Anything, ownerID).
		Return(&userservice.User{ID: ownerID, Email: "owner@example.com"}, nil)
	f.notify.On("SendBookingConfirmation", mock.Anything,
		mock.MatchedBy(func(msg *notifyservice.ConfirmationMessage) bool {
			return msg.Email == "ivan@example.com" && msg.OwnerEmail == "owner@example.com"
		})).Return(nil)
	f.notify.On("SendBookingCancellation", mock.Anything,
		mock.MatchedBy(func(msg *notifyservice.CancellationMessage) bool {
			return msg.Email == "petr@example.com" && msg.TimelineText != ""
		})).Return(nil)
	f.spaces.On("RecomputeStatus", mock.Anything, spaceID).Return(nil)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: bookingID, UserID: ownerID})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Booking.Status)
	assert.Equal(t, []int64{77}, resp.CancelledBookingIDs)
	assert.Equal(t, domain.StatusCancelled, competitor.Status)
	require.NotNil(t, competitor.CancellationReason)
	assert.Contains(t, *competitor.CancellationReason, "auto-cancelled")
	f.notify.AssertExpectations(t)
}

func TestExecute_BlockedByExternalBooking(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking()
	external := &domain.Booking{
		ID:        88,
		SpaceID:   spaceID,
		StartTime: booking.StartTime.Add(time.Hour),
		EndTime:   booking.EndTime.Add(time.Hour),
		Status:    domain.StatusExternal,
	}

	f.repo.On("GetByID", mock.Anything, bookingID).Return(booking, nil)
	f.spaces.On("GetSpace", mock.Anything, spaceID).Return(testSpace(), nil)
	f.repo.On("GetBySpaceID", mock.Anything, spaceID, false).
		Return([]*domain.Booking{booking, external}, nil)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: bookingID, UserID: ownerID})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, domain.StatusPending, booking.Status)
	f.repo.AssertNotCalled(t, "Update")
}

func TestExecute_NonOwnerDenied(t *testing.T) {
	f := newFixture(t)

	f.repo.On("GetByID", mock.Anything, bookingID).Return(pendingBooking(), nil)
	f.spaces.On("GetSpace", mock.Anything, spaceID).Return(testSpace(), nil)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: bookingID, UserID: customerID})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_InvalidTransition(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking()
	booking.Status = domain.StatusCompleted

	f.repo.On("GetByID", mock.Anything, bookingID).Return(booking, nil)
	f.spaces.On("GetSpace", mock.Anything, spaceID).Return(testSpace(), nil)
	f.repo.On("GetBySpaceID", mock.Anything, spaceID, false).
		Return([]*domain.Booking{booking}, nil)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: bookingID, UserID: ownerID})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExecute_ConfirmFromConflictStatus(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking()
	booking.Status = domain.StatusConflict

	f.repo.On("GetByID", mock.Anything, bookingID).Return(booking, nil)
	f.spaces.On("GetSpace", mock.Anything, spaceID).Return(testSpace(), nil)
	f.repo.On("GetBySpaceID", mock.Anything, spaceID, false).
		Return([]*domain.Booking{booking}, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetUser", mock.Anything, ownerID).
		Return(&userservice.User{ID: ownerID, Email: "owner@example.com"}, nil)
	f.notify.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil)
	f.spaces.On("RecomputeStatus", mock.Anything, spaceID).Return(nil)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: bookingID, UserID: ownerID})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Booking.Status)
	assert.Empty(t, resp.CancelledBookingIDs)
}
