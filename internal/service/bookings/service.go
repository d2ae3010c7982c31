package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	spaceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/conflicts"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/lifecycle"
)

// Service сервис для работы с жизненным циклом бронирований
type Service struct {
	bookingRepo  BookingRepository
	spaceClient  SpaceServiceClient
	notifyClient NotifyServiceClient
	sweeper      OverdueSweeper
	detector     *conflicts.Detector
	logger       Logger

	defaultLocation *time.Location
	now             func() time.Time
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	spaceClient SpaceServiceClient,
	notifyClient NotifyServiceClient,
	sweeper OverdueSweeper,
	detector *conflicts.Detector,
	logger Logger,
	defaultLocation *time.Location,
) *Service {
	return &Service{
		bookingRepo:     bookingRepo,
		spaceClient:     spaceClient,
		notifyClient:    notifyClient,
		sweeper:         sweeper,
		detector:        detector,
		logger:          logger,
		defaultLocation: defaultLocation,
		now:             time.Now,
	}
}

// GetByID получает бронирование по ID.
// Доступно владельцу бронирования и владельцу пространства.
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, actorID)

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingAccess(ctx, booking, actorID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actorID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя.
// Опционально фильтрует по статусу.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// GetSpaceBookings получает активные бронирования пространства.
// Доступно только владельцу пространства. Перед выдачей прогоняет
// ленивую развёртку просроченных и разметку конфликтов — расписание
// чинит себя при каждом чтении.
func (s *Service) GetSpaceBookings(ctx context.Context, spaceID int64, actorID int64) (*models.BookingListResponse, error) {
	s.logger.Info("GetSpaceBookings: fetching bookings for space=%d, user=%d", spaceID, actorID)

	space, err := s.getSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != actorID {
		s.logger.Warn("GetSpaceBookings: user=%d is not owner of space=%d", actorID, spaceID)
		return nil, ErrAccessDenied
	}

	bookings, err := s.bookingRepo.GetBySpaceID(ctx, spaceID, false)
	if err != nil {
		s.logger.Error("GetSpaceBookings: repository error for space=%d: %v", spaceID, err)
		return nil, fmt.Errorf("%w: GetSpaceBookings - repository error: %v", ErrInternal, err)
	}

	if _, err := s.sweeper.Sweep(ctx, spaceID, bookings, s.now()); err != nil {
		s.logger.Error("GetSpaceBookings: overdue sweep for space=%d failed: %v", spaceID, err)
		return nil, fmt.Errorf("%w: GetSpaceBookings - overdue sweep: %v", ErrInternal, err)
	}

	for _, changed := range s.detector.SweepPending(bookings) {
		if err := s.bookingRepo.Update(ctx, changed); err != nil {
			s.logger.Error("GetSpaceBookings: persist conflict booking id=%d failed: %v", changed.ID, err)
			return nil, fmt.Errorf("%w: GetSpaceBookings - persist conflict: %v", ErrInternal, err)
		}
	}

	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование.
// Владелец бронирования может отменить с учетом срока отмены пространства,
// владелец пространства — в любой момент.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	space, err := s.getSpace(ctx, booking.SpaceID)
	if err != nil {
		return err
	}

	now := s.now()
	byOwner := booking.UserID != nil && *booking.UserID == req.UserID

	if byOwner {
		if space.CancellationNoticeHours > 0 {
			notice := time.Duration(space.CancellationNoticeHours) * time.Hour
			if now.Add(notice).After(booking.StartTime) {
				s.logger.Warn("Cancel: booking id=%d cancellation window passed (notice=%dh)", bookingID, space.CancellationNoticeHours)
				return ErrCancellationWindowPassed
			}
		}
	} else if space.OwnerID != req.UserID {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return ErrAccessDenied
	}

	actor := req.UserID
	if err := lifecycle.Transition(booking, domain.StatusCancelled, &actor, now, req.CancellationReason); err != nil {
		return s.mapLifecycleError(err, bookingID)
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.notifyCancellation(ctx, booking, space, !byOwner)

	if err := s.spaceClient.RecomputeStatus(ctx, booking.SpaceID); err != nil {
		s.logger.Warn("Cancel: recompute status for space=%d failed: %v", booking.SpaceID, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// CheckIn отмечает заезд по бронированию.
// Доступно только владельцу пространства.
func (s *Service) CheckIn(ctx context.Context, bookingID int64, actorID int64) (*models.BookingResponse, error) {
	return s.transitionByOwner(ctx, "CheckIn", bookingID, actorID, domain.StatusCheckedIn)
}

// CheckOut отмечает выезд по бронированию.
// Доступно только владельцу пространства.
func (s *Service) CheckOut(ctx context.Context, bookingID int64, actorID int64) (*models.BookingResponse, error) {
	return s.transitionByOwner(ctx, "CheckOut", bookingID, actorID, domain.StatusCheckout)
}

// UpdateStatus переводит бронирование в указанный статус.
// Доступно только владельцу пространства; подтверждение и отмена
// выполняются отдельными операциями, системные статусы недоступны.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d", bookingID, req.Status, req.UserID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	switch newStatus {
	case domain.StatusCheckedIn, domain.StatusCheckout, domain.StatusCompleted,
		domain.StatusNoShow, domain.StatusAbandoned:
		// допустимые ручные переводы
	default:
		s.logger.Warn("UpdateStatus: status=%s is not settable directly for booking id=%d", newStatus, bookingID)
		return nil, fmt.Errorf("%w: status %s is not settable directly", ErrInvalidInput, newStatus)
	}

	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	return s.applyOwnerTransition(ctx, "UpdateStatus", bookingID, req.UserID, newStatus, reason)
}

// Вспомогательные методы

func (s *Service) transitionByOwner(ctx context.Context, op string, bookingID, actorID int64, to domain.BookingStatus) (*models.BookingResponse, error) {
	s.logger.Info("%s: booking id=%d by user=%d", op, bookingID, actorID)
	return s.applyOwnerTransition(ctx, op, bookingID, actorID, to, "")
}

func (s *Service) applyOwnerTransition(ctx context.Context, op string, bookingID, actorID int64, to domain.BookingStatus, reason string) (*models.BookingResponse, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	space, err := s.getSpace(ctx, booking.SpaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != actorID {
		s.logger.Warn("%s: user=%d is not owner of space=%d", op, actorID, booking.SpaceID)
		return nil, ErrAccessDenied
	}

	if err := lifecycle.Transition(booking, to, &actorID, s.now(), reason); err != nil {
		return nil, s.mapLifecycleError(err, bookingID)
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if err := s.spaceClient.RecomputeStatus(ctx, booking.SpaceID); err != nil {
		s.logger.Warn("%s: recompute status for space=%d failed: %v", op, booking.SpaceID, err)
	}

	s.logger.Info("%s: booking id=%d moved to status=%s", op, bookingID, booking.Status)
	return models.FromDomainBooking(booking), nil
}

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("getBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("getBooking: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: getBooking - repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

func (s *Service) getSpace(ctx context.Context, spaceID int64) (*spaceClient.Space, error) {
	space, err := s.spaceClient.GetSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, spaceClient.ErrSpaceNotFound) {
			s.logger.Warn("getSpace: space id=%d not found", spaceID)
			return nil, ErrSpaceNotFound
		}
		s.logger.Error("getSpace: failed to get space id=%d: %v", spaceID, err)
		return nil, fmt.Errorf("%w: getSpace - space service error: %v", ErrInternal, err)
	}
	return space, nil
}

// checkBookingAccess проверяет доступ к бронированию: владелец бронирования
// или владелец пространства
func (s *Service) checkBookingAccess(ctx context.Context, booking *domain.Booking, actorID int64) error {
	if booking.UserID != nil && *booking.UserID == actorID {
		return nil
	}

	space, err := s.getSpace(ctx, booking.SpaceID)
	if err != nil {
		return err
	}
	if space.OwnerID != actorID {
		return ErrAccessDenied
	}

	return nil
}

func (s *Service) mapLifecycleError(err error, bookingID int64) error {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		s.logger.Warn("booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case errors.Is(err, lifecycle.ErrReasonRequired), errors.Is(err, lifecycle.ErrReasonTooLong):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

// notifyCancellation отправляет письмо об отмене best-effort.
// К отменам владельцем пространства прикладывается карта занятости дня.
func (s *Service) notifyCancellation(ctx context.Context, booking *domain.Booking, space *spaceClient.Space, withTimeline bool) {
	if booking.NotificationEmail == "" {
		return
	}

	reason := ""
	if booking.CancellationReason != nil {
		reason = *booking.CancellationReason
	}

	msg := &notifyservice.CancellationMessage{
		Email:       booking.NotificationEmail,
		SpaceName:   space.Name,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		BookingCode: booking.BookingCode,
		Reason:      reason,
	}
	if booking.GuestName != nil {
		msg.CustomerName = *booking.GuestName
	}

	if withTimeline {
		loc := space.Location(s.defaultLocation)
		dayBookings, err := s.bookingRepo.GetBySpaceID(ctx, booking.SpaceID, false)
		if err != nil {
			s.logger.Warn("notifyCancellation: failed to load bookings for timeline, space=%d: %v", booking.SpaceID, err)
		} else {
			msg.TimelineText = BuildDayTimeline(booking.StartTime.In(loc), loc, dayBookings)
		}
	}

	if err := s.notifyClient.SendBookingCancellation(ctx, msg); err != nil {
		s.logger.Warn("notifyCancellation: failed to send cancellation for booking id=%d: %v", booking.ID, err)
	}
}
