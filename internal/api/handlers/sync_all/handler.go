package sync_all

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
)

type Handler struct {
	engine SyncEngine
	logger Logger
}

func NewHandler(engine SyncEngine, logger Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// SyncAllResponse результат обхода всех пространств с импортами
type SyncAllResponse struct {
	SyncedSpaces int `json:"syncedSpaces"`
}

// Handle POST /api/v1/internal/ical-sync
// Внутренний эндпоинт для планировщика: обходит все пространства
// с настроенными импортами.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	synced, err := h.engine.SyncAll(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("POST /internal/ical-sync - Sync failed after %d spaces: %v", synced, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/ical-sync - Synced %d spaces", synced)
	handlers.RespondJSON(w, http.StatusOK, SyncAllResponse{SyncedSpaces: synced})
}
