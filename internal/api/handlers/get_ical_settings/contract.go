package get_ical_settings

import (
	"context"

	"github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings/models"
)

type SettingsService interface {
	Get(ctx context.Context, spaceID int64, actorID int64) (*models.SettingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
