package ical

import (
	"context"
	"database/sql"

	ics "github.com/arran4/golang-ical"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
)

// BookingRepo интерфейс хранилища бронирований
type BookingRepo interface {
	GetBySpaceID(ctx context.Context, spaceID int64, includeInactive bool) ([]*domain.Booking, error)
	GetForExport(ctx context.Context, spaceID int64, since sql.NullTime) ([]*domain.Booking, error)
	FindExternal(ctx context.Context, spaceID int64, icalURL, icalUID string) (*domain.Booking, error)
	ListExternalByURL(ctx context.Context, spaceID int64, icalURL string) ([]*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

// SettingsRepo интерфейс хранилища настроек синхронизации
type SettingsRepo interface {
	GetBySpaceID(ctx context.Context, spaceID int64) (*domain.SpaceIcalSetting, error)
	ListWithImports(ctx context.Context) ([]*domain.SpaceIcalSetting, error)
	TryBeginSync(ctx context.Context, spaceID int64) (bool, error)
	FinishSync(ctx context.Context, spaceID int64, status domain.SyncStatus, syncErr *string) error
}

// FeedFetcher интерфейс загрузки внешних календарей
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*ics.Calendar, error)
}

// NotifyServiceClient интерфейс клиента для NotifyService
type NotifyServiceClient interface {
	SendSyncConflict(ctx context.Context, msg *notifyservice.SyncConflictMessage) error
}

// Logger интерфейс логирования
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Metrics интерфейс метрик синхронизации
type Metrics interface {
	IncIcalSyncRun(status string)
}
