package conflicts

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

// ResolveOnConfirm отменяет бронирования, проигравшие подтвержденному.
// Кандидаты — пересекающиеся по сырым окнам бронирования в разрешимых
// статусах; внешние (external) никогда не отменяются автоматически.
// Мутирует проигравших на месте и возвращает их; запись в БД и уведомления —
// забота вызывающего, внутри той же транзакции, что и подтверждение.
func ResolveOnConfirm(winner *domain.Booking, candidates []*domain.Booking, now time.Time) []*domain.Booking {
	cancelled := make([]*domain.Booking, 0)

	for _, c := range candidates {
		if c.ID == winner.ID {
			continue
		}
		if !isResolvable(c.Status) {
			continue
		}
		if !winner.Overlaps(c) {
			continue
		}

		reason := fmt.Sprintf("auto-cancelled: conflicts with confirmed booking %d", winner.ID)
		cancelledAt := now

		c.Status = domain.StatusCancelled
		c.CancellationReason = &reason
		c.CancelledAt = &cancelledAt
		c.UpdatedBy = nil

		cancelled = append(cancelled, c)
	}

	return cancelled
}

func isResolvable(status domain.BookingStatus) bool {
	for _, s := range domain.ResolvableStatuses {
		if s == status {
			return true
		}
	}
	return false
}
