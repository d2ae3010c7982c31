package overdue

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

// Sweeper переводит просроченные бронирования в overdue-статусы.
// Запускается лениво при чтении расписания пространства — отдельного
// фонового процесса нет, расписание чинит себя при обращении.
type Sweeper struct {
	bookings BookingRepo
	spaces   SpaceStatusRecomputer
	logger   Logger

	checkinGrace  time.Duration
	checkoutGrace time.Duration
}

// NewSweeper создает новый sweeper просроченных бронирований
func NewSweeper(bookings BookingRepo, spaces SpaceStatusRecomputer, logger Logger, checkinGraceMinutes, checkoutGraceMinutes int) *Sweeper {
	return &Sweeper{
		bookings:      bookings,
		spaces:        spaces,
		logger:        logger,
		checkinGrace:  time.Duration(checkinGraceMinutes) * time.Minute,
		checkoutGrace: time.Duration(checkoutGraceMinutes) * time.Minute,
	}
}

// Sweep применяет эскалации ко всем просроченным бронированиям и сохраняет
// изменения. Возвращает измененные бронирования. Ошибка пересчета статуса
// пространства не прерывает развёртку.
func (s *Sweeper) Sweep(ctx context.Context, spaceID int64, bookings []*domain.Booking, now time.Time) ([]*domain.Booking, error) {
	changed := make([]*domain.Booking, 0)

	for _, b := range bookings {
		if s.escalate(b, now) {
			if err := s.bookings.Update(ctx, b); err != nil {
				return changed, fmt.Errorf("overdue.sweeper: Sweep - update booking %d: %w", b.ID, err)
			}
			s.logger.Info("overdue.sweeper: booking %d escalated to %s", b.ID, b.Status)
			changed = append(changed, b)
		}
	}

	if len(changed) > 0 {
		if err := s.spaces.RecomputeStatus(ctx, spaceID); err != nil {
			s.logger.Warn("overdue.sweeper: recompute status for space %d failed: %v", spaceID, err)
		}
	}

	return changed, nil
}

// escalate применяет одну эскалацию к бронированию, возвращает true при изменении
func (s *Sweeper) escalate(b *domain.Booking, now time.Time) bool {
	if b.IsTerminal() || b.Status == domain.StatusExternal {
		return false
	}

	// защитная отмена бронирований с вырожденным интервалом
	if b.StartTime.IsZero() || b.EndTime.IsZero() || !b.StartTime.Before(b.EndTime) {
		reason := "auto-cancelled: invalid booking interval"
		cancelledAt := now
		b.Status = domain.StatusCancelled
		b.CancellationReason = &reason
		b.CancelledAt = &cancelledAt
		b.UpdatedBy = nil
		return true
	}

	switch b.Status {
	case domain.StatusPending:
		if now.After(b.EndTime) {
			s.markOverdue(b, domain.StatusOverduePending, now)
			return true
		}

	case domain.StatusConfirmed:
		if b.ActualCheckIn == nil && now.After(b.StartTime.Add(s.checkinGrace)) {
			s.markOverdue(b, domain.StatusOverdueCheckin, now)
			return true
		}

	case domain.StatusCheckedIn:
		if b.ActualCheckOut == nil && now.After(b.EndTime.Add(s.checkoutGrace)) {
			s.markOverdue(b, domain.StatusOverdueCheckout, now)
			return true
		}
	}

	return false
}

func (s *Sweeper) markOverdue(b *domain.Booking, to domain.BookingStatus, now time.Time) {
	note := fmt.Sprintf("escalated to %s at %s", to, now.UTC().Format(time.RFC3339))
	if b.Notes != nil && *b.Notes != "" {
		note = *b.Notes + "\n" + note
	}
	b.Status = to
	b.Notes = &note
	b.UpdatedBy = nil
}
