package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/userservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
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

// AvailabilityChecker интерфейс проверки правил бронирования.
// Занятость расписания при создании не проверяется: пересечения
// разрешаются при подтверждении владельцем.
type AvailabilityChecker interface {
	ValidateInterval(space *spaceservice.Space, start, end, now time.Time) error
}

// PriceCalculator интерфейс расчета стоимости бронирования
type PriceCalculator interface {
	Calculate(space *spaceservice.Space, start, end time.Time) (float64, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс метрик бронирований
type Metrics interface {
	IncBookingsCreated()
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
