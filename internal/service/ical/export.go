package ical

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

const productID = "-//SMC//SpaceBookingService//EN"

// ExportCalendar формирует iCal представление расписания пространства:
// pending и confirmed бронирования, завершившиеся не раньше окна экспорта.
// Детали клиента наружу не утекают — только факт занятости.
func (e *Engine) ExportCalendar(ctx context.Context, space *spaceservice.Space, now time.Time) (string, error) {
	since := sql.NullTime{
		Time:  now.AddDate(0, 0, -e.exportWindowDays),
		Valid: true,
	}

	bookings, err := e.bookings.GetForExport(ctx, space.ID, since)
	if err != nil {
		return "", fmt.Errorf("ical.service: ExportCalendar - load bookings: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, b := range bookings {
		event := cal.AddEvent(strconv.FormatInt(b.ID, 10))
		event.SetDtStampTime(now.UTC())
		event.SetStartAt(b.StartTime.UTC())
		event.SetEndAt(b.EndTime.UTC())
		event.SetSummary(fmt.Sprintf("Booked: %s", space.Name))

		if b.Notes != nil && *b.Notes != "" {
			event.SetDescription(*b.Notes)
		}

		switch b.Status {
		case domain.StatusConfirmed:
			event.SetStatus(ics.ObjectStatusConfirmed)
		case domain.StatusPending:
			event.SetStatus(ics.ObjectStatusTentative)
		default:
			event.SetStatus(ics.ObjectStatusCancelled)
		}
	}

	return cal.Serialize(), nil
}
