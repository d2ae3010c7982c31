package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusCheckedIn       BookingStatus = "checked_in"
	StatusCheckout        BookingStatus = "checkout"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
	StatusNoShow          BookingStatus = "no_show"
	StatusAbandoned       BookingStatus = "abandoned"
	StatusConflict        BookingStatus = "conflict"
	StatusExternal        BookingStatus = "external"
	StatusOverduePending  BookingStatus = "overdue_pending"
	StatusOverdueCheckin  BookingStatus = "overdue_checkin"
	StatusOverdueCheckout BookingStatus = "overdue_checkout"
)

// Booking represents a space booking in the system
type Booking struct {
	ID      int64
	SpaceID int64

	// UserID is nil for guest bookings; guest bookings carry name and email instead
	UserID     *int64
	GuestName  *string
	GuestEmail *string

	StartTime time.Time // UTC
	EndTime   time.Time // UTC
	Status    BookingStatus

	// TotalPrice is computed once at creation and never recalculated
	TotalPrice        float64
	BookingCode       string
	NotificationEmail string

	// Notes free-form notes: customer remarks, imported event summary,
	// audit trail of automatic status escalations
	Notes *string

	IsExternalBooking bool
	ExternalIcalURL   *string
	ExternalIcalUID   *string

	ActualCheckIn  *time.Time
	ActualCheckOut *time.Time

	CancellationReason *string
	CancelledAt        *time.Time

	// Audit fields; nil actor means a system-driven mutation
	CreatedBy    *int64
	UpdatedBy    *int64
	CheckedInBy  *int64
	CheckedOutBy *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBlocking returns true if the booking occupies the schedule for conflict purposes
func (b *Booking) IsBlocking() bool {
	switch b.Status {
	case StatusConfirmed, StatusCheckedIn, StatusCheckout,
		StatusOverdueCheckin, StatusOverdueCheckout, StatusExternal:
		return true
	}
	return false
}

// IsTerminal returns true if the booking reached a final status
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusAbandoned:
		return true
	}
	return false
}

// IsGuest returns true for bookings made without a registered user
func (b *Booking) IsGuest() bool {
	return b.UserID == nil
}

// IsSyncActive returns true if the booking participates in the post-sync conflict scan
func (b *Booking) IsSyncActive() bool {
	return b.Status == StatusConfirmed || b.Status == StatusExternal || b.Status == StatusPending
}

// OverlapsInterval reports whether the booking's raw window overlaps [start, end).
// Half-open semantics: touching boundaries do not overlap.
func (b *Booking) OverlapsInterval(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// Overlaps reports whether two bookings' raw windows overlap
func (b *Booking) Overlaps(other *Booking) bool {
	return b.OverlapsInterval(other.StartTime, other.EndTime)
}

// BlockingStatuses список статусов, занимающих расписание
var BlockingStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCheckedIn,
	StatusCheckout,
	StatusOverdueCheckin,
	StatusOverdueCheckout,
	StatusExternal,
}

// ResolvableStatuses список статусов, которые отменяются автоматически
// при подтверждении пересекающегося бронирования
var ResolvableStatuses = []BookingStatus{
	StatusPending,
	StatusConflict,
	StatusConfirmed,
	StatusCheckedIn,
	StatusCheckout,
}

// TerminalStatuses список финальных статусов
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
	StatusAbandoned,
}
