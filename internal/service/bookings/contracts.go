package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetBySpaceID(ctx context.Context, spaceID int64, includeInactive bool) ([]*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

// SpaceServiceClient интерфейс клиента SpaceService
type SpaceServiceClient interface {
	GetSpace(ctx context.Context, spaceID int64) (*spaceservice.Space, error)
	RecomputeStatus(ctx context.Context, spaceID int64) error
}

// NotifyServiceClient интерфейс клиента NotifyService
type NotifyServiceClient interface {
	SendBookingCancellation(ctx context.Context, msg *notifyservice.CancellationMessage) error
}

// OverdueSweeper интерфейс ленивой развёртки просроченных бронирований
type OverdueSweeper interface {
	Sweep(ctx context.Context, spaceID int64, bookings []*domain.Booking, now time.Time) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
