package ical

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	bookingstore "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/booking"
	icalsettingstore "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/icalsetting"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/conflicts"
)

const tombstoneReason = "removed from source"

// Engine синхронизирует расписание пространства с внешними iCal календарями
// и экспортирует собственное расписание в iCal
type Engine struct {
	bookings BookingRepo
	settings SettingsRepo
	feeds    FeedFetcher
	notify   NotifyServiceClient
	detector *conflicts.Detector
	logger   Logger
	metrics  Metrics

	exportWindowDays int
}

// NewEngine создает новый движок синхронизации календарей
func NewEngine(bookings BookingRepo, settings SettingsRepo, feeds FeedFetcher, notify NotifyServiceClient, detector *conflicts.Detector, logger Logger, metrics Metrics, exportWindowDays int) *Engine {
	return &Engine{
		bookings:         bookings,
		settings:         settings,
		feeds:            feeds,
		notify:           notify,
		detector:         detector,
		logger:           logger,
		metrics:          metrics,
		exportWindowDays: exportWindowDays,
	}
}

// SyncSpace выполняет один проход синхронизации пространства: импорт всех
// настроенных фидов, снятие удаленных из источника событий и пост-скан
// конфликтов. Параллельный вызов по тому же пространству no-op-ится
// через флаг is_sync_in_progress.
func (e *Engine) SyncSpace(ctx context.Context, spaceID int64, now time.Time) (domain.SyncStatus, error) {
	setting, err := e.settings.GetBySpaceID(ctx, spaceID)
	if errors.Is(err, icalsettingstore.ErrSettingNotFound) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ical.service: SyncSpace - load settings: %w", err)
	}

	if !setting.HasImports() {
		return "", ErrNoImportsConfigured
	}

	started, err := e.settings.TryBeginSync(ctx, spaceID)
	if err != nil {
		return "", fmt.Errorf("ical.service: SyncSpace - begin sync: %w", err)
	}
	if !started {
		return "", ErrSyncInProgress
	}

	var feedErrors []string
	for _, url := range setting.ImportIcalURLs {
		// ошибка одного фида не мешает импорту остальных
		if err := e.importFeed(ctx, spaceID, url, now); err != nil {
			e.logger.Warn("ical.service: SyncSpace - feed %s for space %d failed: %v", url, spaceID, err)
			feedErrors = append(feedErrors, fmt.Sprintf("%s: %v", url, err))
		}
	}

	clusterCount, err := e.postSyncScan(ctx, spaceID, now)
	if err != nil {
		e.logger.Error("ical.service: SyncSpace - conflict scan for space %d failed: %v", spaceID, err)
		feedErrors = append(feedErrors, fmt.Sprintf("conflict scan: %v", err))
	}

	status := domain.SyncStatusCompleted
	var syncErr *string
	switch {
	case len(feedErrors) > 0:
		status = domain.SyncStatusFailed
		joined := strings.Join(feedErrors, "; ")
		syncErr = &joined
	case clusterCount > 0:
		status = domain.SyncStatusConflictDetected
		summary := fmt.Sprintf("sync detected %d cluster(s) of overlapping bookings", clusterCount)
		syncErr = &summary
	}

	if err := e.settings.FinishSync(ctx, spaceID, status, syncErr); err != nil {
		return status, fmt.Errorf("ical.service: SyncSpace - finish sync: %w", err)
	}

	e.metrics.IncIcalSyncRun(string(status))
	e.logger.Info("ical.service: SyncSpace - space %d finished with status %s", spaceID, status)

	return status, nil
}

// SyncAll синхронизирует все пространства с настроенными импортами.
// Возвращает количество успешно синхронизированных пространств.
func (e *Engine) SyncAll(ctx context.Context, now time.Time) (int, error) {
	settings, err := e.settings.ListWithImports(ctx)
	if err != nil {
		return 0, fmt.Errorf("ical.service: SyncAll - list settings: %w", err)
	}

	synced := 0
	for _, setting := range settings {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		_, err := e.SyncSpace(ctx, setting.SpaceID, now)
		switch {
		case errors.Is(err, ErrSyncInProgress):
			e.logger.Info("ical.service: SyncAll - space %d skipped, sync already running", setting.SpaceID)
		case err != nil:
			e.logger.Error("ical.service: SyncAll - space %d failed: %v", setting.SpaceID, err)
		default:
			synced++
		}
	}

	return synced, nil
}

// importFeed импортирует один внешний календарь: создает и обновляет внешние
// бронирования по идентичности (space, url, uid), снимает исчезнувшие из фида
func (e *Engine) importFeed(ctx context.Context, spaceID int64, url string, now time.Time) error {
	cal, err := e.feeds.Fetch(ctx, url)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})

	for _, event := range cal.Events() {
		uid := event.Id()
		if uid == "" {
			continue
		}

		start, err := event.GetStartAt()
		if err != nil {
			e.logger.Warn("ical.service: importFeed - event %s has unparsable start, skipped: %v", uid, err)
			continue
		}
		end, err := event.GetEndAt()
		if err != nil {
			e.logger.Warn("ical.service: importFeed - event %s has unparsable end, skipped: %v", uid, err)
			continue
		}
		if !start.Before(end) {
			continue
		}

		summary := ""
		if prop := event.GetProperty(ics.ComponentPropertySummary); prop != nil {
			summary = prop.Value
		}

		seen[uid] = struct{}{}

		if err := e.upsertExternal(ctx, spaceID, url, uid, start.UTC(), end.UTC(), summary); err != nil {
			return err
		}
	}

	return e.removeVanished(ctx, spaceID, url, seen, now)
}

func (e *Engine) upsertExternal(ctx context.Context, spaceID int64, url, uid string, start, end time.Time, summary string) error {
	existing, err := e.bookings.FindExternal(ctx, spaceID, url, uid)
	if errors.Is(err, bookingstore.ErrBookingNotFound) {
		booking := &domain.Booking{
			SpaceID:           spaceID,
			StartTime:         start,
			EndTime:           end,
			Status:            domain.StatusExternal,
			BookingCode:       domain.NewBookingCode(),
			IsExternalBooking: true,
			ExternalIcalURL:   &url,
			ExternalIcalUID:   &uid,
		}
		if summary != "" {
			booking.Notes = &summary
		}

		if _, err := e.bookings.Create(ctx, booking); err != nil {
			return fmt.Errorf("create external booking %s: %w", uid, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("find external booking %s: %w", uid, err)
	}

	changed := !existing.StartTime.Equal(start) || !existing.EndTime.Equal(end)

	if summary != "" && (existing.Notes == nil || *existing.Notes != summary) {
		existing.Notes = &summary
		changed = true
	}

	// событие вернулось в источник после удаления
	if existing.Status != domain.StatusExternal {
		existing.Status = domain.StatusExternal
		existing.CancellationReason = nil
		existing.CancelledAt = nil
		changed = true
	}

	if !changed {
		return nil
	}

	existing.StartTime = start
	existing.EndTime = end
	existing.UpdatedBy = nil

	if err := e.bookings.Update(ctx, existing); err != nil {
		return fmt.Errorf("update external booking %s: %w", uid, err)
	}
	return nil
}

// removeVanished отменяет внешние бронирования, исчезнувшие из фида
func (e *Engine) removeVanished(ctx context.Context, spaceID int64, url string, seen map[string]struct{}, now time.Time) error {
	existing, err := e.bookings.ListExternalByURL(ctx, spaceID, url)
	if err != nil {
		return fmt.Errorf("list external bookings: %w", err)
	}

	for _, b := range existing {
		if b.ExternalIcalUID == nil {
			continue
		}
		if _, ok := seen[*b.ExternalIcalUID]; ok {
			continue
		}

		reason := tombstoneReason
		cancelledAt := now
		b.Status = domain.StatusCancelled
		b.CancellationReason = &reason
		b.CancelledAt = &cancelledAt
		b.UpdatedBy = nil

		if err := e.bookings.Update(ctx, b); err != nil {
			return fmt.Errorf("cancel vanished booking %d: %w", b.ID, err)
		}
	}

	return nil
}

// postSyncScan ищет конфликты среди активных бронирований после импорта.
// Каждый участник кластера транзитивно пересекающихся бронирований
// принудительно переводится в conflict, минуя таблицу переходов;
// на кластер отправляется одно уведомление. Возвращает число кластеров.
func (e *Engine) postSyncScan(ctx context.Context, spaceID int64, now time.Time) (int, error) {
	all, err := e.bookings.GetBySpaceID(ctx, spaceID, false)
	if err != nil {
		return 0, fmt.Errorf("load space bookings: %w", err)
	}

	clusters := conflicts.ClusterActive(all)

	for _, cluster := range clusters {
		ids := make([]int64, 0, len(cluster))
		for _, b := range cluster {
			ids = append(ids, b.ID)
		}

		for _, b := range cluster {
			if b.Status == domain.StatusConflict {
				continue
			}

			note := fmt.Sprintf("conflict detected during calendar sync at %s: overlap cluster %v",
				now.UTC().Format(time.RFC3339), ids)
			b.Status = domain.StatusConflict
			b.Notes = appendNote(b.Notes, note)
			b.UpdatedBy = nil

			if err := e.bookings.Update(ctx, b); err != nil {
				return len(clusters), fmt.Errorf("persist conflict booking %d: %w", b.ID, err)
			}
		}

		// одно уведомление на кластер, best-effort
		msg := &notifyservice.SyncConflictMessage{
			SpaceID:    spaceID,
			BookingIDs: ids,
			DetectedAt: now.UTC(),
		}
		if err := e.notify.SendSyncConflict(ctx, msg); err != nil {
			e.logger.Error("ical.service: postSyncScan - conflict notification for space %d failed: %v", spaceID, err)
		}
	}

	// pending, пересекающиеся с блокирующими вне кластеров активных
	// (например checked_in), снимаются обычной разверткой
	for _, changed := range e.detector.SweepPending(all) {
		if err := e.bookings.Update(ctx, changed); err != nil {
			return len(clusters), fmt.Errorf("persist conflict booking %d: %w", changed.ID, err)
		}
	}

	return len(clusters), nil
}

func appendNote(notes *string, note string) *string {
	if notes == nil || *notes == "" {
		return &note
	}
	combined := *notes + "\n" + note
	return &combined
}
