package export_calendar

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

type SpaceServiceClient interface {
	GetSpace(ctx context.Context, spaceID int64) (*spaceservice.Space, error)
}

type CalendarExporter interface {
	ExportCalendar(ctx context.Context, space *spaceservice.Space, now time.Time) (string, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
