package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings/models"
)

// Request модель запроса на создание бронирования.
// Указывается либо UserID (бронирование от зарегистрированного пользователя),
// либо GuestName + GuestEmail (гостевое бронирование).
type Request struct {
	SpaceID    int64
	UserID     *int64
	GuestName  *string
	GuestEmail *string

	StartTime time.Time // UTC
	EndTime   time.Time // UTC

	Notes *string
}

// Response модель ответа с созданным бронированием
type Response = models.BookingResponse
