package confirm_booking

import (
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings/models"
)

// Request модель запроса на подтверждение бронирования
type Request struct {
	BookingID int64
	UserID    int64
}

// Response модель ответа с подтвержденным бронированием
// и списком автоматически отмененных конкурентов
type Response struct {
	Booking *models.BookingResponse `json:"booking"`

	// CancelledBookingIDs бронирования, отмененные в пользу подтвержденного
	CancelledBookingIDs []int64 `json:"cancelledBookingIds"`
}
