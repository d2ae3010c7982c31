package check_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-SpaceBookingService/internal/usecase/check_availability"
)

const (
	msgInvalidSpaceID = "некорректный ID пространства"
	msgInvalidTime    = "некорректные параметры start/end, ожидается RFC3339"
	msgSpaceNotFound  = "пространство не найдено"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/spaces/{spaceId}/availability?start=&end=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	spaceID, err := strconv.ParseInt(vars["spaceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /spaces/{id}/availability - Invalid space ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpaceID)
		return
	}

	query := r.URL.Query()
	start, startErr := time.Parse(time.RFC3339, query.Get("start"))
	end, endErr := time.Parse(time.RFC3339, query.Get("end"))
	if startErr != nil || endErr != nil {
		h.logger.Warn("GET /spaces/{id}/availability - Invalid time params: start=%v, end=%v", startErr, endErr)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &checkAvailability.Request{
		SpaceID:   spaceID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrSpaceNotFound):
			h.logger.Warn("GET /spaces/{id}/availability - Space not found: space_id=%d", spaceID)
			handlers.RespondNotFound(w, msgSpaceNotFound)

		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("GET /spaces/{id}/availability - Invalid input: space_id=%d, error=%v", spaceID, err)
			handlers.RespondBadRequest(w, msgInvalidTime)

		default:
			h.logger.Error("GET /spaces/{id}/availability - Failed to check availability: space_id=%d, error=%v", spaceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /spaces/{id}/availability - Checked: space_id=%d, available=%v", spaceID, result.Available)
	handlers.RespondJSON(w, http.StatusOK, result)
}
