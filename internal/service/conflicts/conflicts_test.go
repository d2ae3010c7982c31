package conflicts

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func booking(id int64, status domain.BookingStatus, start, end time.Time) *domain.Booking {
	return &domain.Booking{
		ID:        id,
		SpaceID:   1,
		Status:    status,
		StartTime: start,
		EndTime:   end,
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	// соприкасающиеся интервалы не пересекаются
	assert.False(t, Overlaps(at(9, 0), at(10, 0), at(10, 0), at(11, 0)))
	assert.False(t, Overlaps(at(10, 0), at(11, 0), at(9, 0), at(10, 0)))

	assert.True(t, Overlaps(at(9, 0), at(10, 30), at(10, 0), at(11, 0)))
	assert.True(t, Overlaps(at(9, 0), at(12, 0), at(10, 0), at(11, 0)))
	assert.True(t, Overlaps(at(10, 0), at(11, 0), at(9, 0), at(12, 0)))
}

func TestInflateWindow(t *testing.T) {
	d := NewDetector()
	space := &spaceservice.Space{BufferMinutes: 15, CleaningDurationMinutes: 30}

	start, end := d.InflateWindow(space, at(10, 0), at(12, 0))

	assert.Equal(t, at(9, 45), start)
	assert.Equal(t, at(12, 45), end)
}

func TestFindBlocking_BufferMakesAdjacentConflict(t *testing.T) {
	d := NewDetector()
	space := &spaceservice.Space{BufferMinutes: 15}

	existing := []*domain.Booking{
		booking(1, domain.StatusConfirmed, at(9, 0), at(10, 0)),
	}

	// без буфера интервалы бы соприкасались; буфер делает их конфликтными
	blocker := d.FindBlocking(space, at(10, 0), at(11, 0), existing, nil)

	require.NotNil(t, blocker)
	assert.Equal(t, int64(1), blocker.ID)
}

func TestFindBlocking_BlockerWindowStaysRaw(t *testing.T) {
	d := NewDetector()
	space := &spaceservice.Space{BufferMinutes: 30}

	existing := []*domain.Booking{
		booking(7, domain.StatusConfirmed, at(13, 30), at(14, 30)),
	}

	// кандидат [12:00, 13:00) расширяется до [11:30, 13:30) и ровно
	// соприкасается с сырым окном блокера — слот свободен
	assert.Nil(t, d.FindBlocking(space, at(12, 0), at(13, 0), existing, nil))

	// расширенное окно кандидата заходит на сырое окно блокера
	blocker := d.FindBlocking(space, at(12, 0), at(13, 15), existing, nil)
	require.NotNil(t, blocker)
	assert.Equal(t, int64(7), blocker.ID)
}

func TestFindBlocking_IgnoresNonBlockingStatuses(t *testing.T) {
	d := NewDetector()
	space := &spaceservice.Space{}

	existing := []*domain.Booking{
		booking(1, domain.StatusPending, at(10, 0), at(11, 0)),
		booking(2, domain.StatusCancelled, at(10, 0), at(11, 0)),
		booking(3, domain.StatusConflict, at(10, 0), at(11, 0)),
	}

	assert.Nil(t, d.FindBlocking(space, at(10, 0), at(11, 0), existing, nil))
}

func TestFindBlocking_ExcludesSelf(t *testing.T) {
	d := NewDetector()
	space := &spaceservice.Space{}
	self := int64(5)

	existing := []*domain.Booking{
		booking(5, domain.StatusConfirmed, at(10, 0), at(11, 0)),
	}

	assert.Nil(t, d.FindBlocking(space, at(10, 0), at(11, 0), existing, &self))
}

func TestSweepPending_MarksOverlappedPending(t *testing.T) {
	d := NewDetector()

	pending := booking(1, domain.StatusPending, at(10, 0), at(12, 0))
	confirmed := booking(2, domain.StatusConfirmed, at(11, 0), at(13, 0))
	untouched := booking(3, domain.StatusPending, at(14, 0), at(15, 0))

	changed := d.SweepPending([]*domain.Booking{pending, confirmed, untouched})

	require.Len(t, changed, 1)
	assert.Equal(t, int64(1), changed[0].ID)
	assert.Equal(t, domain.StatusConflict, pending.Status)
	require.NotNil(t, pending.Notes)
	assert.Contains(t, *pending.Notes, "overlaps booking 2")

	assert.Equal(t, domain.StatusPending, untouched.Status)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
}

func TestSweepPending_Idempotent_NoCascade(t *testing.T) {
	d := NewDetector()

	first := booking(1, domain.StatusPending, at(10, 0), at(12, 0))
	second := booking(2, domain.StatusPending, at(11, 0), at(13, 0))
	blocker := booking(3, domain.StatusExternal, at(11, 30), at(12, 30))

	changed := d.SweepPending([]*domain.Booking{first, second, blocker})
	require.Len(t, changed, 2)

	// повторный прогон ничего не меняет: conflict не блокирует и не каскадирует
	changed = d.SweepPending([]*domain.Booking{first, second, blocker})
	assert.Empty(t, changed)
	assert.Equal(t, domain.StatusConflict, first.Status)
	assert.Equal(t, domain.StatusConflict, second.Status)
}

func TestSweepPending_PendingPairDoesNotConflict(t *testing.T) {
	d := NewDetector()

	first := booking(1, domain.StatusPending, at(10, 0), at(12, 0))
	second := booking(2, domain.StatusPending, at(11, 0), at(13, 0))

	changed := d.SweepPending([]*domain.Booking{first, second})

	assert.Empty(t, changed)
}

func TestResolveOnConfirm_CancelsLosers(t *testing.T) {
	now := at(9, 0)
	winner := booking(1, domain.StatusConfirmed, at(10, 0), at(12, 0))

	pendingLoser := booking(2, domain.StatusPending, at(11, 0), at(13, 0))
	conflictLoser := booking(3, domain.StatusConflict, at(10, 30), at(11, 30))
	external := booking(4, domain.StatusExternal, at(10, 0), at(12, 0))
	nonOverlapping := booking(5, domain.StatusPending, at(13, 0), at(14, 0))

	cancelled := ResolveOnConfirm(winner, []*domain.Booking{winner, pendingLoser, conflictLoser, external, nonOverlapping}, now)

	require.Len(t, cancelled, 2)
	assert.Equal(t, domain.StatusCancelled, pendingLoser.Status)
	assert.Equal(t, domain.StatusCancelled, conflictLoser.Status)
	require.NotNil(t, pendingLoser.CancellationReason)
	assert.Equal(t, "auto-cancelled: conflicts with confirmed booking 1", *pendingLoser.CancellationReason)
	require.NotNil(t, pendingLoser.CancelledAt)
	assert.Equal(t, now, *pendingLoser.CancelledAt)
	assert.Nil(t, pendingLoser.UpdatedBy)

	// внешние бронирования автоматически не отменяются
	assert.Equal(t, domain.StatusExternal, external.Status)
	assert.Equal(t, domain.StatusPending, nonOverlapping.Status)
}

func TestResolveOnConfirm_NoOverlapAfterResolution(t *testing.T) {
	// инвариант: после разрешения ни одно оставшееся разрешаемое
	// бронирование не пересекается с подтвержденным победителем
	rng := rand.New(rand.NewSource(42))

	statuses := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConflict,
		domain.StatusConfirmed,
		domain.StatusCheckedIn,
		domain.StatusCheckout,
		domain.StatusExternal,
	}

	for iter := 0; iter < 500; iter++ {
		now := at(6, 0)

		all := make([]*domain.Booking, 0, 10)
		for i := 0; i < 10; i++ {
			startMin := rng.Intn(16 * 60)
			durMin := 30 + rng.Intn(180)
			start := now.Add(time.Duration(startMin) * time.Minute)
			all = append(all, booking(
				int64(i+1),
				statuses[rng.Intn(len(statuses))],
				start,
				start.Add(time.Duration(durMin)*time.Minute),
			))
		}

		winner := all[rng.Intn(len(all))]
		winner.Status = domain.StatusConfirmed

		ResolveOnConfirm(winner, all, now)

		for _, b := range all {
			if b.ID == winner.ID || !isResolvable(b.Status) {
				continue
			}
			assert.False(t,
				Overlaps(winner.StartTime, winner.EndTime, b.StartTime, b.EndTime),
				"iter %d: booking %d (%s) still overlaps confirmed booking %d",
				iter, b.ID, b.Status, winner.ID)
		}
	}
}

func TestClusterActive(t *testing.T) {
	a := booking(1, domain.StatusConfirmed, at(10, 0), at(12, 0))
	b := booking(2, domain.StatusExternal, at(11, 0), at(13, 0))
	c := booking(3, domain.StatusPending, at(12, 30), at(14, 0))
	lone := booking(4, domain.StatusConfirmed, at(15, 0), at(16, 0))
	terminal := booking(5, domain.StatusCancelled, at(10, 0), at(16, 0))

	clusters := ClusterActive([]*domain.Booking{a, b, c, lone, terminal})

	// a-b пересекаются, b-c пересекаются: один транзитивный кластер из трех
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0], 3)
}

func TestClusterActive_NoConflicts(t *testing.T) {
	a := booking(1, domain.StatusConfirmed, at(10, 0), at(11, 0))
	b := booking(2, domain.StatusConfirmed, at(11, 0), at(12, 0))

	clusters := ClusterActive([]*domain.Booking{a, b})

	assert.Empty(t, clusters)
}
