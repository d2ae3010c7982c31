package update_ical_settings

import (
	"context"

	"github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings/models"
)

type SettingsService interface {
	Update(ctx context.Context, spaceID int64, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
