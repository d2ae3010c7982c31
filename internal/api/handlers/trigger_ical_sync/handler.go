package trigger_ical_sync

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaceBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings"
)

const (
	msgInvalidSpaceID = "некорректный ID пространства"
	msgSpaceNotFound  = "пространство не найдено"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "запускать синхронизацию может только владелец пространства"
	msgSyncInProgress = "синхронизация уже выполняется"
	msgNoImports      = "для пространства не настроены импортируемые календари"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/spaces/{spaceId}/ical-settings/sync
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	spaceID, err := strconv.ParseInt(vars["spaceId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /spaces/{id}/ical-settings/sync - Invalid space ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpaceID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /spaces/{id}/ical-settings/sync - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.TriggerSync(r.Context(), spaceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, icalsettings.ErrSpaceNotFound), errors.Is(err, icalsettings.ErrSettingsNotFound):
			h.logger.Warn("POST /spaces/{id}/ical-settings/sync - Not found: space_id=%d", spaceID)
			handlers.RespondNotFound(w, msgSpaceNotFound)

		case errors.Is(err, icalsettings.ErrAccessDenied):
			h.logger.Warn("POST /spaces/{id}/ical-settings/sync - Access denied: space_id=%d, user_id=%d", spaceID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, icalsettings.ErrSyncInProgress):
			h.logger.Warn("POST /spaces/{id}/ical-settings/sync - Sync already running: space_id=%d", spaceID)
			handlers.RespondConflict(w, msgSyncInProgress)

		case errors.Is(err, icalsettings.ErrNoImportsConfigured):
			h.logger.Warn("POST /spaces/{id}/ical-settings/sync - No imports configured: space_id=%d", spaceID)
			handlers.RespondBadRequest(w, msgNoImports)

		default:
			h.logger.Error("POST /spaces/{id}/ical-settings/sync - Failed to sync: space_id=%d, error=%v", spaceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /spaces/{id}/ical-settings/sync - Sync finished: space_id=%d, status=%s",
		spaceID, result.SyncStatus)
	handlers.RespondJSON(w, http.StatusOK, result)
}
