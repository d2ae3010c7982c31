package trigger_ical_sync

import (
	"context"

	"github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings/models"
)

type SettingsService interface {
	TriggerSync(ctx context.Context, spaceID int64, actorID int64) (*models.TriggerSyncResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
