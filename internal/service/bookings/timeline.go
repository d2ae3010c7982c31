package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

// BuildDayTimeline строит почасовую текстовую карту занятости дня
// по локальному времени пространства. Прикладывается к письмам
// о системных отменах, чтобы владелец видел расписание целиком.
func BuildDayTimeline(day time.Time, loc *time.Location, bookings []*domain.Booking) string {
	var sb strings.Builder

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	sb.WriteString(dayStart.Format(domain.DateFormat))
	sb.WriteString("\n")

	for hour := domain.TimelineStartHour; hour < domain.TimelineEndHour; hour++ {
		slotStart := dayStart.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)

		label := "free"
		for _, b := range bookings {
			if !b.IsBlocking() {
				continue
			}
			if b.OverlapsInterval(slotStart, slotEnd) {
				label = fmt.Sprintf("booked (%s)", b.BookingCode)
				break
			}
		}

		sb.WriteString(fmt.Sprintf("%02d:00 - %02d:00  %s\n", hour, hour+1, label))
	}

	return sb.String()
}
