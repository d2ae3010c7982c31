package conflicts

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

// Detector обнаруживает пересечения бронирований с учетом
// буферов и времени уборки пространства
type Detector struct{}

// NewDetector создает новый детектор конфликтов
func NewDetector() *Detector {
	return &Detector{}
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов [s1, e1) и [s2, e2).
// Касание границ пересечением не считается.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// InflateWindow расширяет окно бронирования служебными интервалами:
// буфер перед началом, уборка и буфер после окончания
func (d *Detector) InflateWindow(space *spaceservice.Space, start, end time.Time) (time.Time, time.Time) {
	buffer := time.Duration(space.BufferMinutes) * time.Minute
	cleaning := time.Duration(space.CleaningDurationMinutes) * time.Minute

	return start.Add(-buffer), end.Add(cleaning + buffer)
}

// FindBlocking возвращает первое блокирующее бронирование, чье сырое окно
// пересекается с расширенным окном кандидата [start, end). Расширяется
// только кандидат — иначе буфер учитывался бы дважды. excludeID исключает
// само проверяемое бронирование из сравнения.
func (d *Detector) FindBlocking(space *spaceservice.Space, start, end time.Time, existing []*domain.Booking, excludeID *int64) *domain.Booking {
	candidateStart, candidateEnd := d.InflateWindow(space, start, end)

	for _, b := range existing {
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if !b.IsBlocking() {
			continue
		}

		if Overlaps(candidateStart, candidateEnd, b.StartTime, b.EndTime) {
			return b
		}
	}

	return nil
}

// SweepPending переводит pending-бронирования, пересекающиеся (по сырым
// окнам) с блокирующими, в статус conflict. Conflict не блокирует расписание
// сам — развёртка идемпотентна и не каскадирует. Возвращает измененные
// бронирования; персистентность — забота вызывающего.
func (d *Detector) SweepPending(bookings []*domain.Booking) []*domain.Booking {
	changed := make([]*domain.Booking, 0)

	for _, pending := range bookings {
		if pending.Status != domain.StatusPending {
			continue
		}

		for _, blocker := range bookings {
			if blocker.ID == pending.ID || !blocker.IsBlocking() {
				continue
			}
			if !pending.Overlaps(blocker) {
				continue
			}

			note := fmt.Sprintf("marked as conflict: overlaps booking %d (%s - %s)",
				blocker.ID,
				blocker.StartTime.UTC().Format(time.RFC3339),
				blocker.EndTime.UTC().Format(time.RFC3339),
			)
			pending.Status = domain.StatusConflict
			pending.Notes = appendNote(pending.Notes, note)
			pending.UpdatedBy = nil

			changed = append(changed, pending)
			break
		}
	}

	return changed
}

func appendNote(notes *string, note string) *string {
	if notes == nil || *notes == "" {
		return &note
	}
	combined := *notes + "\n" + note
	return &combined
}
