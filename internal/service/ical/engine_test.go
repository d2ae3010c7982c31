package ical

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	bookingstore "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/conflicts"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetBySpaceID(ctx context.Context, spaceID int64, includeInactive bool) ([]*domain.Booking, error) {
	args := m.Called(ctx, spaceID, includeInactive)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetForExport(ctx context.Context, spaceID int64, since sql.NullTime) ([]*domain.Booking, error) {
	args := m.Called(ctx, spaceID, since)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) FindExternal(ctx context.Context, spaceID int64, icalURL, icalUID string) (*domain.Booking, error) {
	args := m.Called(ctx, spaceID, icalURL, icalUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListExternalByURL(ctx context.Context, spaceID int64, icalURL string) ([]*domain.Booking, error) {
	args := m.Called(ctx, spaceID, icalURL)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) GetBySpaceID(ctx context.Context, spaceID int64) (*domain.SpaceIcalSetting, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpaceIcalSetting), args.Error(1)
}

func (m *mockSettingsRepo) ListWithImports(ctx context.Context) ([]*domain.SpaceIcalSetting, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.SpaceIcalSetting), args.Error(1)
}

func (m *mockSettingsRepo) TryBeginSync(ctx context.Context, spaceID int64) (bool, error) {
	args := m.Called(ctx, spaceID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSettingsRepo) FinishSync(ctx context.Context, spaceID int64, status domain.SyncStatus, syncErr *string) error {
	args := m.Called(ctx, spaceID, status, syncErr)
	return args.Error(0)
}

type mockFeedFetcher struct {
	mock.Mock
}

func (m *mockFeedFetcher) Fetch(ctx context.Context, url string) (*ics.Calendar, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ics.Calendar), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendSyncConflict(ctx context.Context, msg *notifyservice.SyncConflictMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type nopNotifier struct{}

func (nopNotifier) SendSyncConflict(context.Context, *notifyservice.SyncConflictMessage) error {
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) IncIcalSyncRun(string) {}

var syncNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const feedURL = "https://calendar.example.com/space.ics"

func newEngine(bookings *mockBookingRepo, settings *mockSettingsRepo, feeds *mockFeedFetcher) *Engine {
	return NewEngine(bookings, settings, feeds, nopNotifier{}, conflicts.NewDetector(), nopLogger{}, nopMetrics{}, domain.DefaultExportWindowDays)
}

func newEngineWithNotifier(bookings *mockBookingRepo, settings *mockSettingsRepo, feeds *mockFeedFetcher, notifier *mockNotifier) *Engine {
	return NewEngine(bookings, settings, feeds, notifier, conflicts.NewDetector(), nopLogger{}, nopMetrics{}, domain.DefaultExportWindowDays)
}

type feedEvent struct {
	uid        string
	start, end time.Time
	summary    string
}

func feedCalendar(events ...feedEvent) *ics.Calendar {
	cal := ics.NewCalendar()
	for _, e := range events {
		event := cal.AddEvent(e.uid)
		event.SetStartAt(e.start)
		event.SetEndAt(e.end)
		if e.summary != "" {
			event.SetSummary(e.summary)
		}
	}
	return cal
}

func settingWithImports(spaceID int64) *domain.SpaceIcalSetting {
	return &domain.SpaceIcalSetting{
		SpaceID:        spaceID,
		ImportIcalURLs: []string{feedURL},
		SyncStatus:     domain.SyncStatusNever,
	}
}

func TestExportCalendar(t *testing.T) {
	bookings := new(mockBookingRepo)
	engine := newEngine(bookings, new(mockSettingsRepo), new(mockFeedFetcher))

	space := &spaceservice.Space{ID: 10, Name: "Loft A"}
	stored := []*domain.Booking{
		{
			ID:        1,
			SpaceID:   10,
			Status:    domain.StatusConfirmed,
			StartTime: syncNow.Add(24 * time.Hour),
			EndTime:   syncNow.Add(26 * time.Hour),
		},
		{
			ID:        2,
			SpaceID:   10,
			Status:    domain.StatusPending,
			StartTime: syncNow.Add(48 * time.Hour),
			EndTime:   syncNow.Add(50 * time.Hour),
		},
	}

	bookings.On("GetForExport", mock.Anything, int64(10), mock.Anything).Return(stored, nil)

	out, err := engine.ExportCalendar(context.Background(), space, syncNow)

	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "UID:1")
	assert.Contains(t, out, "UID:2")
	assert.Contains(t, out, "SUMMARY:Booked: Loft A")
	assert.Contains(t, out, "STATUS:CONFIRMED")
	assert.Contains(t, out, "STATUS:TENTATIVE")
}

func TestSyncSpace_CreatesExternalBooking(t *testing.T) {
	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	engine := newEngine(bookings, settings, feeds)

	start := syncNow.Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)

	settings.On("GetBySpaceID", mock.Anything, int64(10)).Return(settingWithImports(10), nil)
	settings.On("TryBeginSync", mock.Anything, int64(10)).Return(true, nil)
	feeds.On("Fetch", mock.Anything, feedURL).Return(feedCalendar(feedEvent{
		uid: "ev-1", start: start, end: end, summary: "External hold",
	}), nil)

	bookings.On("FindExternal", mock.Anything, int64(10), feedURL, "ev-1").
		Return(nil, bookingstore.ErrBookingNotFound)
	bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.StatusExternal &&
			b.IsExternalBooking &&
			*b.ExternalIcalUID == "ev-1" &&
			*b.ExternalIcalURL == feedURL &&
			b.StartTime.Equal(start) &&
			b.EndTime.Equal(end)
	})).Return(&domain.Booking{ID: 99}, nil)
	bookings.On("ListExternalByURL", mock.Anything, int64(10), feedURL).
		Return([]*domain.Booking{}, nil)
	bookings.On("GetBySpaceID", mock.Anything, int64(10), false).
		Return([]*domain.Booking{}, nil)
	settings.On("FinishSync", mock.Anything, int64(10), domain.SyncStatusCompleted, (*string)(nil)).Return(nil)

	status, err := engine.SyncSpace(context.Background(), 10, syncNow)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, status)
	bookings.AssertExpectations(t)
	settings.AssertExpectations(t)
}

func TestSyncSpace_GuardRejectsParallelSync(t *testing.T) {
	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	engine := newEngine(bookings, settings, feeds)

	settings.On("GetBySpaceID", mock.Anything, int64(10)).Return(settingWithImports(10), nil)
	settings.On("TryBeginSync", mock.Anything, int64(10)).Return(false, nil)

	_, err := engine.SyncSpace(context.Background(), 10, syncNow)

	assert.ErrorIs(t, err, ErrSyncInProgress)
	feeds.AssertNotCalled(t, "Fetch")
	settings.AssertNotCalled(t, "FinishSync")
}

func TestSyncSpace_NoImports(t *testing.T) {
	settings := new(mockSettingsRepo)
	engine := newEngine(new(mockBookingRepo), settings, new(mockFeedFetcher))

	settings.On("GetBySpaceID", mock.Anything, int64(10)).
		Return(&domain.SpaceIcalSetting{SpaceID: 10}, nil)

	_, err := engine.SyncSpace(context.Background(), 10, syncNow)

	assert.ErrorIs(t, err, ErrNoImportsConfigured)
}

func TestSyncSpace_TombstonesVanishedEvents(t *testing.T) {
	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	engine := newEngine(bookings, settings, feeds)

	uid := "gone-1"
	vanished := &domain.Booking{
		ID:                5,
		SpaceID:           10,
		Status:            domain.StatusExternal,
		IsExternalBooking: true,
		ExternalIcalURL:   &[]string{feedURL}[0],
		ExternalIcalUID:   &uid,
		StartTime:         syncNow.Add(24 * time.Hour),
		EndTime:           syncNow.Add(26 * time.Hour),
	}

	settings.On("GetBySpaceID", mock.Anything, int64(10)).Return(settingWithImports(10), nil)
	settings.On("TryBeginSync", mock.Anything, int64(10)).Return(true, nil)
	feeds.On("Fetch", mock.Anything, feedURL).Return(feedCalendar(), nil)
	bookings.On("ListExternalByURL", mock.Anything, int64(10), feedURL).
		Return([]*domain.Booking{vanished}, nil)
	bookings.On("Update", mock.Anything, vanished).Return(nil)
	bookings.On("GetBySpaceID", mock.Anything, int64(10), false).
		Return([]*domain.Booking{}, nil)
	settings.On("FinishSync", mock.Anything, int64(10), domain.SyncStatusCompleted, (*string)(nil)).Return(nil)

	status, err := engine.SyncSpace(context.Background(), 10, syncNow)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, status)
	assert.Equal(t, domain.StatusCancelled, vanished.Status)
	require.NotNil(t, vanished.CancellationReason)
	assert.Equal(t, "removed from source", *vanished.CancellationReason)
}

func TestSyncSpace_UpdatesChangedEvent(t *testing.T) {
	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	engine := newEngine(bookings, settings, feeds)

	uid := "ev-1"
	oldStart := syncNow.Add(24 * time.Hour)
	existing := &domain.Booking{
		ID:                5,
		SpaceID:           10,
		Status:            domain.StatusExternal,
		IsExternalBooking: true,
		ExternalIcalURL:   &[]string{feedURL}[0],
		ExternalIcalUID:   &uid,
		StartTime:         oldStart,
		EndTime:           oldStart.Add(2 * time.Hour),
	}

	newStart := oldStart.Add(time.Hour)
	newEnd := newStart.Add(2 * time.Hour)

	settings.On("GetBySpaceID", mock.Anything, int64(10)).Return(settingWithImports(10), nil)
	settings.On("TryBeginSync", mock.Anything, int64(10)).Return(true, nil)
	feeds.On("Fetch", mock.Anything, feedURL).Return(feedCalendar(feedEvent{
		uid: uid, start: newStart, end: newEnd,
	}), nil)
	bookings.On("FindExternal", mock.Anything, int64(10), feedURL, uid).Return(existing, nil)
	bookings.On("Update", mock.Anything, existing).Return(nil)
	bookings.On("ListExternalByURL", mock.Anything, int64(10), feedURL).
		Return([]*domain.Booking{existing}, nil)
	bookings.On("GetBySpaceID", mock.Anything, int64(10), false).
		Return([]*domain.Booking{}, nil)
	settings.On("FinishSync", mock.Anything, int64(10), domain.SyncStatusCompleted, (*string)(nil)).Return(nil)

	_, err := engine.SyncSpace(context.Background(), 10, syncNow)

	require.NoError(t, err)
	assert.True(t, existing.StartTime.Equal(newStart))
	assert.True(t, existing.EndTime.Equal(newEnd))
}

func TestSyncSpace_ConflictDetectedAfterImport(t *testing.T) {
	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	notifier := new(mockNotifier)
	engine := newEngineWithNotifier(bookings, settings, feeds, notifier)

	confirmed := &domain.Booking{
		ID:        1,
		SpaceID:   10,
		Status:    domain.StatusConfirmed,
		StartTime: syncNow.Add(24 * time.Hour),
		EndTime:   syncNow.Add(26 * time.Hour),
	}
	uid := "ev-1"
	imported := &domain.Booking{
		ID:                2,
		SpaceID:           10,
		Status:            domain.StatusExternal,
		IsExternalBooking: true,
		ExternalIcalURL:   &[]string{feedURL}[0],
		ExternalIcalUID:   &uid,
		StartTime:         syncNow.Add(25 * time.Hour),
		EndTime:           syncNow.Add(27 * time.Hour),
	}

	settings.On("GetBySpaceID", mock.Anything, int64(10)).Return(settingWithImports(10), nil)
	settings.On("TryBeginSync", mock.Anything, int64(10)).Return(true, nil)
	feeds.On("Fetch", mock.Anything, feedURL).Return(feedCalendar(feedEvent{
		uid: uid, start: imported.StartTime, end: imported.EndTime,
	}), nil)
	bookings.On("FindExternal", mock.Anything, int64(10), feedURL, uid).Return(imported, nil)
	bookings.On("ListExternalByURL", mock.Anything, int64(10), feedURL).
		Return([]*domain.Booking{imported}, nil)
	bookings.On("GetBySpaceID", mock.Anything, int64(10), false).
		Return([]*domain.Booking{confirmed, imported}, nil)
	bookings.On("Update", mock.Anything, confirmed).Return(nil)
	bookings.On("Update", mock.Anything, imported).Return(nil)
	notifier.On("SendSyncConflict", mock.Anything, mock.MatchedBy(func(msg *notifyservice.SyncConflictMessage) bool {
		return msg.SpaceID == 10 && len(msg.BookingIDs) == 2
	})).Return(nil).Once()
	settings.On("FinishSync", mock.Anything, int64(10), domain.SyncStatusConflictDetected,
		mock.MatchedBy(func(s *string) bool { return s != nil && *s != "" })).Return(nil)

	status, err := engine.SyncSpace(context.Background(), 10, syncNow)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusConflictDetected, status)

	// все участники кластера принудительно переводятся в conflict
	assert.Equal(t, domain.StatusConflict, confirmed.Status)
	assert.Equal(t, domain.StatusConflict, imported.Status)
	require.NotNil(t, confirmed.Notes)
	assert.Contains(t, *confirmed.Notes, "conflict detected during calendar sync")

	notifier.AssertExpectations(t)
	settings.AssertExpectations(t)
}

func TestExportImportRoundTrip(t *testing.T) {
	// экспорт одного пространства скармливается импорту другого:
	// интервалы и summary событий сохраняются без искажений
	exportRepo := new(mockBookingRepo)
	exporter := newEngine(exportRepo, new(mockSettingsRepo), new(mockFeedFetcher))

	space := &spaceservice.Space{ID: 10, Name: "Loft A"}
	start1 := syncNow.Add(24 * time.Hour)
	start2 := syncNow.Add(48 * time.Hour)
	stored := []*domain.Booking{
		{ID: 1, SpaceID: 10, Status: domain.StatusConfirmed, StartTime: start1, EndTime: start1.Add(2 * time.Hour)},
		{ID: 2, SpaceID: 10, Status: domain.StatusPending, StartTime: start2, EndTime: start2.Add(3 * time.Hour)},
	}
	exportRepo.On("GetForExport", mock.Anything, int64(10), mock.Anything).Return(stored, nil)

	out, err := exporter.ExportCalendar(context.Background(), space, syncNow)
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	importer := newEngine(bookings, settings, feeds)

	settings.On("GetBySpaceID", mock.Anything, int64(20)).Return(settingWithImports(20), nil)
	settings.On("TryBeginSync", mock.Anything, int64(20)).Return(true, nil)
	feeds.On("Fetch", mock.Anything, feedURL).Return(cal, nil)

	for _, b := range stored {
		b := b
		bookings.On("FindExternal", mock.Anything, int64(20), feedURL, mock.Anything).
			Return(nil, bookingstore.ErrBookingNotFound).Once()
		bookings.On("Create", mock.Anything, mock.MatchedBy(func(created *domain.Booking) bool {
			return created.Status == domain.StatusExternal &&
				created.StartTime.Equal(b.StartTime) &&
				created.EndTime.Equal(b.EndTime) &&
				created.Notes != nil && *created.Notes == "Booked: Loft A"
		})).Return(&domain.Booking{ID: 100 + b.ID}, nil).Once()
	}
	bookings.On("ListExternalByURL", mock.Anything, int64(20), feedURL).
		Return([]*domain.Booking{}, nil)
	bookings.On("GetBySpaceID", mock.Anything, int64(20), false).
		Return([]*domain.Booking{}, nil)
	settings.On("FinishSync", mock.Anything, int64(20), domain.SyncStatusCompleted, (*string)(nil)).Return(nil)

	status, err := importer.SyncSpace(context.Background(), 20, syncNow)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, status)
	bookings.AssertExpectations(t)
}

func TestSyncSpace_FeedFailureRecorded(t *testing.T) {
	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	engine := newEngine(bookings, settings, feeds)

	settings.On("GetBySpaceID", mock.Anything, int64(10)).Return(settingWithImports(10), nil)
	settings.On("TryBeginSync", mock.Anything, int64(10)).Return(true, nil)
	feeds.On("Fetch", mock.Anything, feedURL).Return(nil, assert.AnError)
	bookings.On("GetBySpaceID", mock.Anything, int64(10), false).
		Return([]*domain.Booking{}, nil)
	settings.On("FinishSync", mock.Anything, int64(10), domain.SyncStatusFailed, mock.MatchedBy(func(s *string) bool {
		return s != nil && *s != ""
	})).Return(nil)

	status, err := engine.SyncSpace(context.Background(), 10, syncNow)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusFailed, status)
	settings.AssertExpectations(t)
}

func TestSyncAll_SkipsBusySpaces(t *testing.T) {
	bookings := new(mockBookingRepo)
	settings := new(mockSettingsRepo)
	feeds := new(mockFeedFetcher)
	engine := newEngine(bookings, settings, feeds)

	settings.On("ListWithImports", mock.Anything).Return([]*domain.SpaceIcalSetting{
		settingWithImports(10),
		settingWithImports(20),
	}, nil)

	// space 10 занят другим проходом
	settings.On("GetBySpaceID", mock.Anything, int64(10)).Return(settingWithImports(10), nil)
	settings.On("TryBeginSync", mock.Anything, int64(10)).Return(false, nil)

	settings.On("GetBySpaceID", mock.Anything, int64(20)).Return(settingWithImports(20), nil)
	settings.On("TryBeginSync", mock.Anything, int64(20)).Return(true, nil)
	feeds.On("Fetch", mock.Anything, feedURL).Return(feedCalendar(), nil)
	bookings.On("ListExternalByURL", mock.Anything, int64(20), feedURL).
		Return([]*domain.Booking{}, nil)
	bookings.On("GetBySpaceID", mock.Anything, int64(20), false).
		Return([]*domain.Booking{}, nil)
	settings.On("FinishSync", mock.Anything, int64(20), domain.SyncStatusCompleted, (*string)(nil)).Return(nil)

	synced, err := engine.SyncAll(context.Background(), syncNow)

	require.NoError(t, err)
	assert.Equal(t, 1, synced)
}
