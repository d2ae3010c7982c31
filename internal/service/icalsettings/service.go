package icalsettings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	settingsRepo "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/icalsetting"
	spaceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	icalService "github.com/m04kA/SMC-SpaceBookingService/internal/service/ical"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings/models"
)

const maxImportURLs = 10

// Service сервис управления настройками синхронизации календарей пространства
type Service struct {
	settingsRepo SettingsRepository
	spaceClient  SpaceServiceClient
	engine       SyncEngine
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек календарей
func NewService(
	settingsRepo SettingsRepository,
	spaceClient SpaceServiceClient,
	engine SyncEngine,
	logger Logger,
) *Service {
	return &Service{
		settingsRepo: settingsRepo,
		spaceClient:  spaceClient,
		engine:       engine,
		logger:       logger,
	}
}

// Get получает настройки календарей пространства.
// Доступно только владельцу пространства. Для пространства без настроек
// возвращает пустую конфигурацию.
func (s *Service) Get(ctx context.Context, spaceID int64, actorID int64) (*models.SettingsResponse, error) {
	s.logger.Info("Get: fetching ical settings for space=%d by user=%d", spaceID, actorID)

	if err := s.checkOwnerAccess(ctx, spaceID, actorID); err != nil {
		return nil, err
	}

	setting, err := s.settingsRepo.GetBySpaceID(ctx, spaceID)
	if errors.Is(err, settingsRepo.ErrSettingNotFound) {
		return models.FromDomainSetting(&domain.SpaceIcalSetting{
			SpaceID:    spaceID,
			SyncStatus: domain.SyncStatusNever,
		}), nil
	}
	if err != nil {
		s.logger.Error("Get: repository error for space=%d: %v", spaceID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSetting(setting), nil
}

// Update заменяет настройки календарей пространства.
// Доступно только владельцу пространства.
func (s *Service) Update(ctx context.Context, spaceID int64, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("Update: updating ical settings for space=%d by user=%d", spaceID, req.UserID)

	if err := s.validateURLs(req.ImportIcalURLs); err != nil {
		s.logger.Warn("Update: validation failed for space=%d: %v", spaceID, err)
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, spaceID, req.UserID); err != nil {
		return nil, err
	}

	setting := &domain.SpaceIcalSetting{
		SpaceID:        spaceID,
		ImportIcalURLs: req.ImportIcalURLs,
		ExportIcalURL:  req.ExportIcalURL,
	}

	updated, err := s.settingsRepo.Upsert(ctx, setting)
	if err != nil {
		s.logger.Error("Update: repository error for space=%d: %v", spaceID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated ical settings for space=%d, imports=%d", spaceID, len(updated.ImportIcalURLs))
	return models.FromDomainSetting(updated), nil
}

// TriggerSync запускает синхронизацию календарей пространства.
// Доступно только владельцу пространства. Повторный запуск во время
// идущей синхронизации возвращает ErrSyncInProgress.
func (s *Service) TriggerSync(ctx context.Context, spaceID int64, actorID int64) (*models.TriggerSyncResponse, error) {
	s.logger.Info("TriggerSync: starting sync for space=%d by user=%d", spaceID, actorID)

	if err := s.checkOwnerAccess(ctx, spaceID, actorID); err != nil {
		return nil, err
	}

	status, err := s.engine.SyncSpace(ctx, spaceID, time.Now())
	switch {
	case errors.Is(err, icalService.ErrSyncInProgress):
		s.logger.Warn("TriggerSync: sync already running for space=%d", spaceID)
		return nil, ErrSyncInProgress
	case errors.Is(err, icalService.ErrNoImportsConfigured):
		return nil, ErrNoImportsConfigured
	case errors.Is(err, icalService.ErrSettingNotFound):
		return nil, ErrSettingsNotFound
	case err != nil:
		s.logger.Error("TriggerSync: sync failed for space=%d: %v", spaceID, err)
		return nil, fmt.Errorf("%w: TriggerSync - sync error: %v", ErrInternal, err)
	}

	return &models.TriggerSyncResponse{
		SpaceID:    spaceID,
		SyncStatus: string(status),
	}, nil
}

// Вспомогательные методы

// checkOwnerAccess проверяет, что пользователь является владельцем пространства
func (s *Service) checkOwnerAccess(ctx context.Context, spaceID int64, actorID int64) error {
	space, err := s.spaceClient.GetSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, spaceClient.ErrSpaceNotFound) {
			s.logger.Warn("checkOwnerAccess: space id=%d not found", spaceID)
			return ErrSpaceNotFound
		}
		s.logger.Error("checkOwnerAccess: failed to get space id=%d: %v", spaceID, err)
		return fmt.Errorf("%w: checkOwnerAccess - space service error: %v", ErrInternal, err)
	}

	if space.OwnerID != actorID {
		s.logger.Warn("checkOwnerAccess: user=%d is not owner of space=%d", actorID, spaceID)
		return ErrAccessDenied
	}

	return nil
}

// validateURLs проверяет список импортируемых календарей
func (s *Service) validateURLs(urls []string) error {
	if len(urls) > maxImportURLs {
		return fmt.Errorf("%w: at most %d import urls allowed", ErrInvalidInput, maxImportURLs)
	}

	seen := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: invalid ical url %q", ErrInvalidInput, raw)
		}
		if _, dup := seen[raw]; dup {
			return fmt.Errorf("%w: duplicate ical url %q", ErrInvalidInput, raw)
		}
		seen[raw] = struct{}{}
	}

	return nil
}
