package confirm_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/userservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetBySpaceID(ctx context.Context, spaceID int64, includeInactive bool) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}

// SpaceServiceClient интерфейс клиента для SpaceService
type SpaceServiceClient interface {
	GetSpace(ctx context.Context, spaceID int64) (*spaceservice.Space, error)
	RecomputeStatus(ctx context.Context, spaceID int64) error
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
}

// NotifyServiceClient интерфейс клиента для NotifyService
type NotifyServiceClient interface {
	SendBookingConfirmation(ctx context.Context, msg *notifyservice.ConfirmationMessage) error
	SendBookingCancellation(ctx context.Context, msg *notifyservice.CancellationMessage) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
