package icalsetting

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/psqlbuilder"
)

// DBExecutor интерфейс для выполнения запросов (см. dbmetrics)
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий настроек синхронизации календарей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBySpaceID получает настройки календарей пространства
func (r *Repository) GetBySpaceID(ctx context.Context, spaceID int64) (*domain.SpaceIcalSetting, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"space_id",
		"import_ical_urls",
		"export_ical_url",
		"is_sync_in_progress",
		"last_sync_attempt",
		"sync_status",
		"last_sync_error",
		"created_at",
		"updated_at",
	).
		From("space_ical_settings").
		Where(squirrel.Eq{"space_id": spaceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBySpaceID - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.SpaceIcalSetting
	var urls pq.StringArray
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.SpaceID,
		&urls,
		&s.ExportIcalURL,
		&s.IsSyncInProgress,
		&s.LastSyncAttempt,
		&s.SyncStatus,
		&s.LastSyncError,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySpaceID - scan setting: %v", ErrScanRow, err)
	}

	s.ImportIcalURLs = urls
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// ListWithImports получает настройки всех пространств, у которых
// сконфигурирован хотя бы один импортируемый календарь
func (r *Repository) ListWithImports(ctx context.Context) ([]*domain.SpaceIcalSetting, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"space_id",
		"import_ical_urls",
		"export_ical_url",
		"is_sync_in_progress",
		"last_sync_attempt",
		"sync_status",
		"last_sync_error",
		"created_at",
		"updated_at",
	).
		From("space_ical_settings").
		Where("cardinality(import_ical_urls) > 0").
		OrderBy("space_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListWithImports - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithImports - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	settings := make([]*domain.SpaceIcalSetting, 0)
	for rows.Next() {
		var s domain.SpaceIcalSetting
		var urls pq.StringArray
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&s.SpaceID,
			&urls,
			&s.ExportIcalURL,
			&s.IsSyncInProgress,
			&s.LastSyncAttempt,
			&s.SyncStatus,
			&s.LastSyncError,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListWithImports - scan row: %v", ErrScanRow, err)
		}

		s.ImportIcalURLs = urls
		s.CreatedAt = createdAt.Time
		s.UpdatedAt = updatedAt.Time
		settings = append(settings, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWithImports - rows error: %v", ErrScanRow, err)
	}

	return settings, nil
}

// Upsert создает или обновляет настройки календарей пространства
func (r *Repository) Upsert(ctx context.Context, s *domain.SpaceIcalSetting) (*domain.SpaceIcalSetting, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("space_ical_settings").
		Columns(
			"space_id",
			"import_ical_urls",
			"export_ical_url",
			"sync_status",
		).
		Values(
			s.SpaceID,
			pq.StringArray(s.ImportIcalURLs),
			s.ExportIcalURL,
			domain.SyncStatusNever,
		).
		Suffix(`ON CONFLICT (space_id) DO UPDATE SET
			import_ical_urls = EXCLUDED.import_ical_urls,
			export_ical_url = EXCLUDED.export_ical_url,
			updated_at = NOW()
			RETURNING sync_status, is_sync_in_progress, last_sync_attempt, last_sync_error, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.SyncStatus,
		&s.IsSyncInProgress,
		&s.LastSyncAttempt,
		&s.LastSyncError,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// TryBeginSync атомарно взводит флаг is_sync_in_progress и отмечает
// время попытки. Возвращает false, если синхронизация уже идет —
// второй вызов по тому же пространству должен no-op-нуться.
func (r *Repository) TryBeginSync(ctx context.Context, spaceID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("space_ical_settings").
		Set("is_sync_in_progress", true).
		Set("last_sync_attempt", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"space_id": spaceID, "is_sync_in_progress": false}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: TryBeginSync - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: TryBeginSync - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: TryBeginSync - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected == 1, nil
}

// FinishSync снимает флаг синхронизации и записывает итоговый статус
func (r *Repository) FinishSync(ctx context.Context, spaceID int64, status domain.SyncStatus, syncErr *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("space_ical_settings").
		Set("is_sync_in_progress", false).
		Set("sync_status", status).
		Set("last_sync_error", syncErr).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"space_id": spaceID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: FinishSync - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: FinishSync - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: FinishSync - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
