package icalsettings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

// SettingsRepository интерфейс репозитория настроек синхронизации
type SettingsRepository interface {
	GetBySpaceID(ctx context.Context, spaceID int64) (*domain.SpaceIcalSetting, error)
	Upsert(ctx context.Context, setting *domain.SpaceIcalSetting) (*domain.SpaceIcalSetting, error)
}

// SpaceServiceClient интерфейс клиента SpaceService
type SpaceServiceClient interface {
	GetSpace(ctx context.Context, spaceID int64) (*spaceservice.Space, error)
}

// SyncEngine интерфейс движка синхронизации календарей
type SyncEngine interface {
	SyncSpace(ctx context.Context, spaceID int64, now time.Time) (domain.SyncStatus, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
