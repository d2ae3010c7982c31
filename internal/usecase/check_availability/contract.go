package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetBySpaceID(ctx context.Context, spaceID int64, includeInactive bool) ([]*domain.Booking, error)
}

// SpaceServiceClient интерфейс клиента для SpaceService
type SpaceServiceClient interface {
	GetSpace(ctx context.Context, spaceID int64) (*spaceservice.Space, error)
}

// AvailabilityChecker интерфейс проверки доступности интервала
type AvailabilityChecker interface {
	CheckStrict(space *spaceservice.Space, start, end, now time.Time, existing []*domain.Booking) error
}

// PriceCalculator интерфейс расчета стоимости бронирования
type PriceCalculator interface {
	Calculate(space *spaceservice.Space, start, end time.Time) (float64, error)
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
