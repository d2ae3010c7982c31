package confirm_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaceBookingService/internal/api/middleware"
	confirmBooking "github.com/m04kA/SMC-SpaceBookingService/internal/usecase/confirm_booking"
)

const (
	msgInvalidBookingID  = "некорректный ID бронирования"
	msgNotFound          = "бронирование не найдено"
	msgSpaceNotFound     = "пространство не найдено"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgForbidden         = "подтверждать может только владелец пространства"
	msgInvalidTransition = "бронирование нельзя подтвердить из текущего статуса"
	msgSlotTaken         = "интервал занят внешним бронированием"
)

type Handler struct {
	useCase ConfirmBookingUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/confirm - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/confirm - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &confirmBooking.Request{
		BookingID: bookingID,
		UserID:    userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/confirm - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmBooking.ErrSpaceNotFound):
			h.logger.Warn("POST /bookings/{id}/confirm - Space not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgSpaceNotFound)

		case errors.Is(err, confirmBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/confirm - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, confirmBooking.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/confirm - Invalid transition: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, confirmBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/confirm - Blocked by external booking: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgSlotTaken)

		default:
			h.logger.Error("POST /bookings/{id}/confirm - Failed to confirm booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/confirm - Booking confirmed: booking_id=%d, cancelled=%d",
		bookingID, len(result.CancelledBookingIDs))
	handlers.RespondJSON(w, http.StatusOK, result)
}
