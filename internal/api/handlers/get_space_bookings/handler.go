package get_space_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaceBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings"
)

const (
	msgInvalidSpaceID = "некорректный ID пространства"
	msgSpaceNotFound  = "пространство не найдено"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "расписание доступно только владельцу пространства"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/spaces/{spaceId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	spaceID, err := strconv.ParseInt(vars["spaceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /spaces/{id}/bookings - Invalid space ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpaceID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /spaces/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetSpaceBookings(r.Context(), spaceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrSpaceNotFound):
			h.logger.Warn("GET /spaces/{id}/bookings - Space not found: space_id=%d", spaceID)
			handlers.RespondNotFound(w, msgSpaceNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /spaces/{id}/bookings - Access denied: space_id=%d, user_id=%d", spaceID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /spaces/{id}/bookings - Failed to get bookings: space_id=%d, error=%v", spaceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /spaces/{id}/bookings - Retrieved %d bookings: space_id=%d, user_id=%d",
		len(result.Bookings), spaceID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
