package export_calendar

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
	spaceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

const (
	msgInvalidSpaceID = "некорректный ID пространства"
	msgSpaceNotFound  = "пространство не найдено"
)

type Handler struct {
	spaces   SpaceServiceClient
	exporter CalendarExporter
	logger   Logger
}

func NewHandler(spaces SpaceServiceClient, exporter CalendarExporter, logger Logger) *Handler {
	return &Handler{
		spaces:   spaces,
		exporter: exporter,
		logger:   logger,
	}
}

// Handle GET /spaces/{spaceId}.ics
// Публичная выдача календаря занятости пространства.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	spaceID, err := strconv.ParseInt(vars["spaceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /spaces/{id}.ics - Invalid space ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpaceID)
		return
	}

	space, err := h.spaces.GetSpace(r.Context(), spaceID)
	if err != nil {
		if errors.Is(err, spaceClient.ErrSpaceNotFound) {
			h.logger.Warn("GET /spaces/{id}.ics - Space not found: space_id=%d", spaceID)
			handlers.RespondNotFound(w, msgSpaceNotFound)
			return
		}
		h.logger.Error("GET /spaces/{id}.ics - Failed to get space: space_id=%d, error=%v", spaceID, err)
		handlers.RespondInternalError(w)
		return
	}

	calendar, err := h.exporter.ExportCalendar(r.Context(), space, time.Now())
	if err != nil {
		h.logger.Error("GET /spaces/{id}.ics - Failed to export calendar: space_id=%d, error=%v", spaceID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /spaces/{id}.ics - Calendar exported: space_id=%d", spaceID)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(calendar))
}
