package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/ptr"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:      1,
		SpaceID: 10,
		UserID:  ptr.Ptr(int64(100)),
		Status:  status,
	}
}

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		from    domain.BookingStatus
		to      domain.BookingStatus
		allowed bool
	}{
		{domain.StatusPending, domain.StatusConfirmed, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		{domain.StatusPending, domain.StatusCheckedIn, false},
		{domain.StatusPending, domain.StatusCompleted, false},

		{domain.StatusConfirmed, domain.StatusCheckedIn, true},
		{domain.StatusConfirmed, domain.StatusCancelled, true},
		{domain.StatusConfirmed, domain.StatusNoShow, true},
		{domain.StatusConfirmed, domain.StatusCompleted, true},
		{domain.StatusConfirmed, domain.StatusAbandoned, true},
		{domain.StatusConfirmed, domain.StatusPending, false},

		{domain.StatusCheckedIn, domain.StatusCheckout, true},
		{domain.StatusCheckedIn, domain.StatusCompleted, true},
		{domain.StatusCheckedIn, domain.StatusCancelled, true},
		{domain.StatusCheckedIn, domain.StatusAbandoned, true},
		{domain.StatusCheckedIn, domain.StatusNoShow, false},

		{domain.StatusCheckout, domain.StatusCompleted, true},
		{domain.StatusCheckout, domain.StatusCancelled, true},
		{domain.StatusCheckout, domain.StatusAbandoned, true},
		{domain.StatusCheckout, domain.StatusCheckedIn, false},

		{domain.StatusOverduePending, domain.StatusConfirmed, true},
		{domain.StatusOverduePending, domain.StatusCheckedIn, true},
		{domain.StatusOverduePending, domain.StatusCancelled, true},
		{domain.StatusOverduePending, domain.StatusCompleted, false},

		{domain.StatusOverdueCheckin, domain.StatusCheckedIn, true},
		{domain.StatusOverdueCheckin, domain.StatusNoShow, true},
		{domain.StatusOverdueCheckin, domain.StatusCancelled, true},
		{domain.StatusOverdueCheckin, domain.StatusCheckout, false},

		{domain.StatusOverdueCheckout, domain.StatusCheckout, true},
		{domain.StatusOverdueCheckout, domain.StatusAbandoned, true},
		{domain.StatusOverdueCheckout, domain.StatusCancelled, true},
		{domain.StatusOverdueCheckout, domain.StatusCompleted, false},

		{domain.StatusConflict, domain.StatusConfirmed, true},
		{domain.StatusConflict, domain.StatusCancelled, true},
		{domain.StatusConflict, domain.StatusCheckedIn, false},

		{domain.StatusCompleted, domain.StatusAbandoned, true},
		{domain.StatusCancelled, domain.StatusAbandoned, true},
		{domain.StatusNoShow, domain.StatusAbandoned, true},
		{domain.StatusCompleted, domain.StatusConfirmed, false},

		{domain.StatusAbandoned, domain.StatusCancelled, false},
		{domain.StatusExternal, domain.StatusCancelled, false},
		{domain.StatusExternal, domain.StatusConfirmed, false},
	}

	for _, tt := range tests {
		name := string(tt.from) + "_to_" + string(tt.to)
		t.Run(name, func(t *testing.T) {
			b := newBooking(tt.from)
			err := Transition(b, tt.to, nil, testNow, "test reason")

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, b.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, b.Status)
			}
		})
	}
}

func TestTransition_CheckIn_RecordsActualTime(t *testing.T) {
	b := newBooking(domain.StatusConfirmed)
	actor := ptr.Ptr(int64(42))

	err := Transition(b, domain.StatusCheckedIn, actor, testNow, "")

	require.NoError(t, err)
	require.NotNil(t, b.ActualCheckIn)
	assert.Equal(t, testNow, *b.ActualCheckIn)
	assert.Equal(t, actor, b.CheckedInBy)
	assert.Equal(t, actor, b.UpdatedBy)
}

func TestTransition_CheckIn_PreservesExistingTime(t *testing.T) {
	earlier := testNow.Add(-time.Hour)
	b := newBooking(domain.StatusOverdueCheckin)
	b.ActualCheckIn = &earlier

	err := Transition(b, domain.StatusCheckedIn, nil, testNow, "")

	require.NoError(t, err)
	assert.Equal(t, earlier, *b.ActualCheckIn)
}

func TestTransition_Completed_BackfillsCheckout(t *testing.T) {
	b := newBooking(domain.StatusCheckedIn)

	err := Transition(b, domain.StatusCompleted, nil, testNow, "")

	require.NoError(t, err)
	require.NotNil(t, b.ActualCheckOut)
	assert.Equal(t, testNow, *b.ActualCheckOut)
}

func TestTransition_Completed_KeepsExplicitCheckout(t *testing.T) {
	checkedOut := testNow.Add(-30 * time.Minute)
	b := newBooking(domain.StatusCheckout)
	b.ActualCheckOut = &checkedOut

	err := Transition(b, domain.StatusCompleted, nil, testNow, "")

	require.NoError(t, err)
	assert.Equal(t, checkedOut, *b.ActualCheckOut)
}

func TestTransition_Cancel_RequiresReason(t *testing.T) {
	b := newBooking(domain.StatusConfirmed)

	err := Transition(b, domain.StatusCancelled, nil, testNow, "")

	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
}

func TestTransition_Cancel_RecordsReasonAndTime(t *testing.T) {
	b := newBooking(domain.StatusPending)

	err := Transition(b, domain.StatusCancelled, nil, testNow, "changed plans")

	require.NoError(t, err)
	require.NotNil(t, b.CancellationReason)
	assert.Equal(t, "changed plans", *b.CancellationReason)
	require.NotNil(t, b.CancelledAt)
	assert.Equal(t, testNow, *b.CancelledAt)
}

func TestTransition_Cancel_ReasonTooLong(t *testing.T) {
	b := newBooking(domain.StatusPending)
	longReason := make([]byte, domain.MaxCancellationReasonLength+1)
	for i := range longReason {
		longReason[i] = 'x'
	}

	err := Transition(b, domain.StatusCancelled, nil, testNow, string(longReason))

	assert.ErrorIs(t, err, ErrReasonTooLong)
}
