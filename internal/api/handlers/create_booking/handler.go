package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaceBookingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-SpaceBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC3339"
	msgSpaceNotFound      = "пространство не найдено"
	msgUserNotFound       = "пользователь не найден"
	msgSpaceNotAvailable  = "пространство не принимает бронирования"
	msgNoRateConfigured   = "у пространства не настроены тарифы"
	msgInvalidInput       = "некорректные параметры бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// userID опционален: гостевые бронирования создаются без аутентификации
	var userID *int64
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSpaceNotFound):
			h.logger.Warn("POST /bookings - Space not found: space_id=%d", req.SpaceID)
			handlers.RespondNotFound(w, msgSpaceNotFound)

		case errors.Is(err, createBooking.ErrUserNotFound):
			h.logger.Warn("POST /bookings - User not found")
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, createBooking.ErrSpaceNotAvailable):
			h.logger.Warn("POST /bookings - Space not available: space_id=%d", req.SpaceID)
			handlers.RespondConflict(w, msgSpaceNotAvailable)

		case errors.Is(err, createBooking.ErrNoRateConfigured):
			h.logger.Warn("POST /bookings - No rate configured: space_id=%d", req.SpaceID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNoRateConfigured)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: space_id=%d, error=%v", req.SpaceID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: space_id=%d, error=%v", req.SpaceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, space_id=%d",
		result.ID, req.SpaceID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
