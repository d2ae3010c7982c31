package update_ical_settings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaceBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings/models"
)

const (
	msgInvalidSpaceID = "некорректный ID пространства"
	msgInvalidBody    = "некорректное тело запроса"
	msgInvalidURLs    = "некорректный список календарей"
	msgSpaceNotFound  = "пространство не найдено"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "настройки календарей доступны только владельцу пространства"
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

// Handle PUT /api/v1/spaces/{spaceId}/ical-settings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	spaceID, err := strconv.ParseInt(vars["spaceId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /spaces/{id}/ical-settings - Invalid space ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpaceID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /spaces/{id}/ical-settings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateSettingsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /spaces/{id}/ical-settings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	settings, err := h.service.Update(r.Context(), spaceID, &models.UpdateSettingsRequest{
		UserID:         userID,
		ImportIcalURLs: req.ImportIcalURLs,
		ExportIcalURL:  req.ExportIcalURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, icalsettings.ErrSpaceNotFound):
			h.logger.Warn("PUT /spaces/{id}/ical-settings - Space not found: space_id=%d", spaceID)
			handlers.RespondNotFound(w, msgSpaceNotFound)

		case errors.Is(err, icalsettings.ErrAccessDenied):
			h.logger.Warn("PUT /spaces/{id}/ical-settings - Access denied: space_id=%d, user_id=%d", spaceID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, icalsettings.ErrInvalidInput):
			h.logger.Warn("PUT /spaces/{id}/ical-settings - Invalid urls: space_id=%d, error=%v", spaceID, err)
			handlers.RespondBadRequest(w, msgInvalidURLs)

		default:
			h.logger.Error("PUT /spaces/{id}/ical-settings - Failed to update settings: space_id=%d, error=%v", spaceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /spaces/{id}/ical-settings - Settings updated: space_id=%d, imports=%d",
		spaceID, len(settings.ImportIcalURLs))
	handlers.RespondJSON(w, http.StatusOK, settings)
}
