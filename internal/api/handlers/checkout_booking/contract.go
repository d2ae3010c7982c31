package checkout_booking

import (
	"context"

	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings/models"
)

type BookingService interface {
	CheckOut(ctx context.Context, bookingID int64, actorID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
