package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/psqlbuilder"
)

// bookingColumns полный набор колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"space_id",
	"user_id",
	"guest_name",
	"guest_email",
	"start_time",
	"end_time",
	"status",
	"total_price",
	"booking_code",
	"notification_email",
	"notes",
	"is_external_booking",
	"external_ical_url",
	"external_ical_uid",
	"actual_check_in",
	"actual_check_out",
	"cancellation_reason",
	"cancelled_at",
	"created_by",
	"updated_by",
	"checked_in_by",
	"checked_out_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"space_id",
			"user_id",
			"guest_name",
			"guest_email",
			"start_time",
			"end_time",
			"status",
			"total_price",
			"booking_code",
			"notification_email",
			"notes",
			"is_external_booking",
			"external_ical_url",
			"external_ical_uid",
			"created_by",
		).
		Values(
			b.SpaceID,
			b.UserID,
			b.GuestName,
			b.GuestEmail,
			b.StartTime,
			b.EndTime,
			b.Status,
			b.TotalPrice,
			b.BookingCode,
			b.NotificationEmail,
			b.Notes,
			b.IsExternalBooking,
			b.ExternalIcalURL,
			b.ExternalIcalUID,
			b.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// GetBySpaceID получает бронирования пространства.
// При includeInactive = false терминальные статусы исключаются.
// Внутри транзакции строки блокируются (FOR UPDATE) — используется
// usecase-ами подтверждения и синхронизации для scan-then-mutate секций.
func (r *Repository) GetBySpaceID(ctx context.Context, spaceID int64, includeInactive bool) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"space_id": spaceID}).
		OrderBy("start_time ASC")

	if !includeInactive {
		terminalStatusStrings := make([]string, len(domain.TerminalStatuses))
		for i, s := range domain.TerminalStatuses {
			terminalStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": terminalStatusStrings})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySpaceID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySpaceID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetBySpaceIDInStatuses получает бронирования пространства в указанных статусах
func (r *Repository) GetBySpaceIDInStatuses(ctx context.Context, spaceID int64, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"space_id": spaceID}).
		Where(squirrel.Eq{"status": statusStrings}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySpaceIDInStatuses - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySpaceIDInStatuses - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetForExport получает бронирования пространства для экспорта календаря:
// только pending/confirmed, созданные или проходящие за последние windowDays и в будущем
func (r *Repository) GetForExport(ctx context.Context, spaceID int64, since sql.NullTime) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"space_id": spaceID}).
		Where(squirrel.Eq{"status": []string{string(domain.StatusPending), string(domain.StatusConfirmed)}}).
		OrderBy("start_time ASC")

	if since.Valid {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.GtOrEq{"end_time": since.Time},
			squirrel.GtOrEq{"created_at": since.Time},
		})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetForExport - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetForExport - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// FindExternal находит импортированное бронирование по тройке (space, url, uid)
func (r *Repository) FindExternal(ctx context.Context, spaceID int64, icalURL, icalUID string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"space_id":          spaceID,
			"external_ical_url": icalURL,
			"external_ical_uid": icalUID,
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindExternal - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindExternal - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// ListExternalByURL получает все активные внешние бронирования, импортированные с указанного URL
func (r *Repository) ListExternalByURL(ctx context.Context, spaceID int64, icalURL string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"space_id":          spaceID,
			"external_ical_url": icalURL,
			"status":            string(domain.StatusExternal),
		}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExternalByURL - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExternalByURL - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Update сохраняет изменяемые поля бронирования (статус, фактические
// времена, причину отмены, аудит). Цена и код бронирования неизменяемы.
func (r *Repository) Update(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("status", b.Status).
		Set("notification_email", b.NotificationEmail).
		Set("guest_name", b.GuestName).
		Set("notes", b.Notes).
		Set("actual_check_in", b.ActualCheckIn).
		Set("actual_check_out", b.ActualCheckOut).
		Set("cancellation_reason", b.CancellationReason).
		Set("cancelled_at", b.CancelledAt).
		Set("updated_by", b.UpdatedBy).
		Set("checked_in_by", b.CheckedInBy).
		Set("checked_out_by", b.CheckedOutBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// scanBooking сканирует одну строку в бронирование
func scanBooking(row *sql.Row) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.SpaceID,
		&b.UserID,
		&b.GuestName,
		&b.GuestEmail,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.TotalPrice,
		&b.BookingCode,
		&b.NotificationEmail,
		&b.Notes,
		&b.IsExternalBooking,
		&b.ExternalIcalURL,
		&b.ExternalIcalUID,
		&b.ActualCheckIn,
		&b.ActualCheckOut,
		&b.CancellationReason,
		&b.CancelledAt,
		&b.CreatedBy,
		&b.UpdatedBy,
		&b.CheckedInBy,
		&b.CheckedOutBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.SpaceID,
			&b.UserID,
			&b.GuestName,
			&b.GuestEmail,
			&b.StartTime,
			&b.EndTime,
			&b.Status,
			&b.TotalPrice,
			&b.BookingCode,
			&b.NotificationEmail,
			&b.Notes,
			&b.IsExternalBooking,
			&b.ExternalIcalURL,
			&b.ExternalIcalUID,
			&b.ActualCheckIn,
			&b.ActualCheckOut,
			&b.CancellationReason,
			&b.CancelledAt,
			&b.CreatedBy,
			&b.UpdatedBy,
			&b.CheckedInBy,
			&b.CheckedOutBy,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
