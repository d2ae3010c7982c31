package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/conflicts"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/types"
)

// Service проверяет возможность бронирования пространства:
// корректность интервала, рабочие часы, ограничения длительности
// и отсутствие пересечений с блокирующими бронированиями
type Service struct {
	detector           *conflicts.Detector
	defaultLocation    *time.Location
	pastStartTolerance time.Duration
}

// NewService создает новый сервис проверки доступности
func NewService(detector *conflicts.Detector, defaultLocation *time.Location, pastStartToleranceMinutes int) *Service {
	return &Service{
		detector:           detector,
		defaultLocation:    defaultLocation,
		pastStartTolerance: time.Duration(pastStartToleranceMinutes) * time.Minute,
	}
}

// ValidateInterval проверяет интервал бронирования по правилам пространства
// без учета занятости расписания
func (s *Service) ValidateInterval(space *spaceservice.Space, start, end, now time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}

	if start.Before(now.Add(-s.pastStartTolerance)) {
		return fmt.Errorf("%w: start %s, now %s",
			ErrStartInPast, start.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}

	if !space.IsBookable() {
		return fmt.Errorf("%w: space %d status %s", ErrSpaceNotAvailable, space.ID, space.Status)
	}

	duration := end.Sub(start)

	if space.MinBookingDurationMinutes > 0 {
		min := time.Duration(space.MinBookingDurationMinutes) * time.Minute
		if duration < min {
			return fmt.Errorf("%w: %s < %s", ErrDurationTooShort, duration, min)
		}
	}

	if space.MaxBookingDurationMinutes > 0 {
		max := time.Duration(space.MaxBookingDurationMinutes) * time.Minute
		if duration > max {
			return fmt.Errorf("%w: %s > %s", ErrDurationTooLong, duration, max)
		}
	}

	if !s.withinOpenHours(space, start, end) {
		return fmt.Errorf("%w: open %s close %s", ErrOutsideOpenHours,
			timeStringOrDash(space.OpenTime), timeStringOrDash(space.CloseTime))
	}

	return nil
}

// CheckStrict полная проверка для прямого запроса доступности:
// правила интервала плюс отсутствие пересечений с блокирующими
// бронированиями (с учетом буферов и уборки). При создании бронирования
// не используется — там действуют только правила, а пересечения
// разрешаются позже при подтверждении.
func (s *Service) CheckStrict(space *spaceservice.Space, start, end, now time.Time, existing []*domain.Booking) error {
	if err := s.ValidateInterval(space, start, end, now); err != nil {
		return err
	}
	return s.CheckSlot(space, start, end, existing, nil)
}

// CheckSlot проверяет только занятость интервала. excludeID исключает
// собственное бронирование — используется при подтверждении.
func (s *Service) CheckSlot(space *spaceservice.Space, start, end time.Time, existing []*domain.Booking, excludeID *int64) error {
	if blocker := s.detector.FindBlocking(space, start, end, existing, excludeID); blocker != nil {
		return fmt.Errorf("%w: booking %d (%s - %s)", ErrSlotTaken,
			blocker.ID,
			blocker.StartTime.UTC().Format(time.RFC3339),
			blocker.EndTime.UTC().Format(time.RFC3339))
	}
	return nil
}

// withinOpenHours проверяет, что интервал умещается в рабочие часы
// пространства по его локальному времени. CloseTime "00:00" (или пустой)
// означает работу до конца суток; окончание ровно в полночь относится
// к предыдущему дню.
func (s *Service) withinOpenHours(space *spaceservice.Space, start, end time.Time) bool {
	openSet := space.OpenTime != nil && !space.OpenTime.IsZero()
	closeSet := space.CloseTime != nil && !space.CloseTime.IsZero() && space.CloseTime.String() != "00:00"

	if !openSet && !closeSet {
		return true
	}

	loc := space.Location(s.defaultLocation)
	localStart := start.In(loc)
	localEnd := end.In(loc)

	startMinutes := localStart.Hour()*60 + localStart.Minute()

	endDay := localEnd
	endMinutes := localEnd.Hour()*60 + localEnd.Minute()
	if endMinutes == 0 && localEnd.Second() == 0 {
		endDay = localEnd.AddDate(0, 0, -1)
		endMinutes = 24 * 60
	}

	// при ограниченных часах бронирование не может пересекать границу суток
	if localStart.Year() != endDay.Year() || localStart.YearDay() != endDay.YearDay() {
		return false
	}

	openMinutes := 0
	if openSet {
		m, err := space.OpenTime.Minutes()
		if err != nil {
			return false
		}
		openMinutes = m
	}

	closeMinutes := 24 * 60
	if closeSet {
		m, err := space.CloseTime.Minutes()
		if err != nil {
			return false
		}
		closeMinutes = m
	}

	return startMinutes >= openMinutes && endMinutes <= closeMinutes
}

func timeStringOrDash(t *types.TimeString) string {
	if t == nil {
		return "-"
	}
	return t.String()
}
