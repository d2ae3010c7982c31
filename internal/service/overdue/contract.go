package overdue

import (
	"context"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

// BookingRepo интерфейс хранилища бронирований
type BookingRepo interface {
	Update(ctx context.Context, booking *domain.Booking) error
}

// SpaceStatusRecomputer интерфейс пересчета статуса пространства в SpaceService
type SpaceStatusRecomputer interface {
	RecomputeStatus(ctx context.Context, spaceID int64) error
}

// Logger интерфейс логирования
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
