package lifecycle

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

// Transition применяет переход статуса к бронированию по таблице допустимых
// переходов и выставляет сопутствующие поля. Мутирует booking на месте;
// персистентность — забота вызывающего. actor = nil означает системное действие.
func Transition(b *domain.Booking, to domain.BookingStatus, actor *int64, now time.Time, reason string) error {
	if !domain.CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}

	switch to {
	case domain.StatusCheckedIn:
		if b.ActualCheckIn == nil {
			checkIn := now
			b.ActualCheckIn = &checkIn
			b.CheckedInBy = actor
		}

	case domain.StatusCheckout:
		if b.ActualCheckOut == nil {
			checkOut := now
			b.ActualCheckOut = &checkOut
			b.CheckedOutBy = actor
		}

	case domain.StatusCompleted:
		// завершение без явного checkout дозаполняет фактическое время выезда
		if b.ActualCheckOut == nil {
			checkOut := now
			b.ActualCheckOut = &checkOut
			b.CheckedOutBy = actor
		}

	case domain.StatusCancelled:
		if reason == "" {
			return ErrReasonRequired
		}
		if len(reason) > domain.MaxCancellationReasonLength {
			return fmt.Errorf("%w: %d > %d characters", ErrReasonTooLong, len(reason), domain.MaxCancellationReasonLength)
		}
		cancelledAt := now
		b.CancellationReason = &reason
		b.CancelledAt = &cancelledAt

	case domain.StatusNoShow, domain.StatusAbandoned:
		if reason != "" {
			b.CancellationReason = &reason
		}
	}

	b.Status = to
	b.UpdatedBy = actor

	return nil
}
