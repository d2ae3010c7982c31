package domain

// allowedTransitions таблица допустимых переходов статусов бронирования.
// Любой переход вне таблицы запрещён. Abandoned из терминальных статусов —
// административный обход для ручного закрытия проблемных записей.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusCheckedIn, StatusCancelled, StatusNoShow, StatusCompleted, StatusAbandoned},
	StatusCheckedIn:       {StatusCheckout, StatusCompleted, StatusCancelled, StatusAbandoned},
	StatusCheckout:        {StatusCompleted, StatusCancelled, StatusAbandoned},
	StatusOverduePending:  {StatusConfirmed, StatusCheckedIn, StatusCancelled},
	StatusOverdueCheckin:  {StatusCheckedIn, StatusNoShow, StatusCancelled},
	StatusOverdueCheckout: {StatusCheckout, StatusAbandoned, StatusCancelled},
	StatusConflict:        {StatusConfirmed, StatusCancelled},
	StatusCompleted:       {StatusAbandoned},
	StatusCancelled:       {StatusAbandoned},
	StatusNoShow:          {StatusAbandoned},
	StatusAbandoned:       {},
	StatusExternal:        {},
}

// CanTransition reports whether a status transition is allowed
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
