package confirm_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	spaceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/conflicts"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/lifecycle"
)

// UseCase подтверждение бронирования владельцем пространства.
// Подтверждение вытесняет пересекающиеся бронирования: они отменяются
// в той же транзакции, что и само подтверждение.
type UseCase struct {
	bookingRepo     BookingRepository
	spaceClient     SpaceServiceClient
	userClient      UserServiceClient
	notifyClient    NotifyServiceClient
	detector        *conflicts.Detector
	txManager       TransactionManager
	timeProvider    TimeProvider
	defaultLocation *time.Location
	logger          Logger
}

// NewUseCase создает usecase подтверждения бронирования
func NewUseCase(
	bookingRepository BookingRepository,
	spaceServiceClient SpaceServiceClient,
	userServiceClient UserServiceClient,
	notifyServiceClient NotifyServiceClient,
	detector *conflicts.Detector,
	txManager TransactionManager,
	timeProvider TimeProvider,
	defaultLocation *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:     bookingRepository,
		spaceClient:     spaceServiceClient,
		userClient:      userServiceClient,
		notifyClient:    notifyServiceClient,
		detector:        detector,
		txManager:       txManager,
		timeProvider:    timeProvider,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

// Execute подтверждает бронирование.
// Проверка внешних блокировок, перевод статуса и отмена проигравших
// выполняются в одной serializable транзакции: параллельное подтверждение
// пересекающегося бронирования не может пройти одновременно.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Execute: confirming booking id=%d by user=%d", req.BookingID, req.UserID)

	// 1. Авторизация: подтверждать может только владелец пространства.
	// Бронирование читается до транзакции только ради spaceID.
	preview, err := uc.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	space, err := uc.getSpace(ctx, preview.SpaceID)
	if err != nil {
		return nil, err
	}

	if space.OwnerID != req.UserID {
		uc.logger.Warn("Execute: user=%d is not owner of space=%d", req.UserID, space.ID)
		return nil, ErrAccessDenied
	}

	now := uc.timeProvider.Now()

	// 2. Подтверждение и вытеснение конкурентов в одной транзакции
	var (
		booking *domain.Booking
		losers  []*domain.Booking
	)
	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Перечитываем бронирование внутри транзакции: статус мог измениться
		b, err := uc.getBooking(txCtx, req.BookingID)
		if err != nil {
			return err
		}

		existing, err := uc.bookingRepo.GetBySpaceID(txCtx, b.SpaceID, false)
		if err != nil {
			return fmt.Errorf("%w: Execute - failed to load space bookings: %v", ErrInternal, err)
		}

		// Внешние бронирования вытеснить нельзя: занятый ими интервал
		// делает подтверждение невозможным
		if blocker := uc.findExternalBlocker(space, b, existing); blocker != nil {
			uc.logger.Warn("Execute: booking id=%d blocked by external booking id=%d", b.ID, blocker.ID)
			return fmt.Errorf("%w: external booking %d (%s - %s)", ErrSlotNotAvailable,
				blocker.ID, blocker.StartTime.UTC().Format(time.RFC3339), blocker.EndTime.UTC().Format(time.RFC3339))
		}

		if err := lifecycle.Transition(b, domain.StatusConfirmed, &req.UserID, now, ""); err != nil {
			if errors.Is(err, lifecycle.ErrInvalidTransition) {
				uc.logger.Warn("Execute: booking id=%d: %v", b.ID, err)
				return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
			}
			return fmt.Errorf("%w: Execute - transition error: %v", ErrInternal, err)
		}

		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return fmt.Errorf("%w: Execute - failed to update booking: %v", ErrInternal, err)
		}

		// Отменяем проигравших в этой же транзакции
		losers = conflicts.ResolveOnConfirm(b, existing, now)
		for _, loser := range losers {
			if err := uc.bookingRepo.Update(txCtx, loser); err != nil {
				return fmt.Errorf("%w: Execute - failed to cancel booking %d: %v", ErrInternal, loser.ID, err)
			}
		}

		booking = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	uc.logger.Info("Execute: booking id=%d confirmed, cancelled %d competing bookings",
		booking.ID, len(losers))

	// 3. Уведомления и пересчет статуса пространства — после коммита, best-effort
	uc.notifyConfirmation(ctx, booking, space)
	uc.notifyLosers(ctx, losers, space)

	if err := uc.spaceClient.RecomputeStatus(ctx, space.ID); err != nil {
		uc.logger.Error("Execute: failed to recompute space status id=%d: %v", space.ID, err)
	}

	cancelledIDs := make([]int64, 0, len(losers))
	for _, loser := range losers {
		cancelledIDs = append(cancelledIDs, loser.ID)
	}

	return &Response{
		Booking:             models.FromDomainBooking(booking),
		CancelledBookingIDs: cancelledIDs,
	}, nil
}

// findExternalBlocker ищет внешнее бронирование, пересекающееся
// с раздутым окном подтверждаемого (буферы и уборка)
func (uc *UseCase) findExternalBlocker(space *spaceClient.Space, b *domain.Booking, existing []*domain.Booking) *domain.Booking {
	externals := make([]*domain.Booking, 0)
	for _, candidate := range existing {
		if candidate.Status == domain.StatusExternal {
			externals = append(externals, candidate)
		}
	}
	return uc.detector.FindBlocking(space, b.StartTime, b.EndTime, externals, &b.ID)
}

func (uc *UseCase) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := uc.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("getBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("getBooking: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: getBooking - repository error: %v", ErrInternal, err)
	}
	return b, nil
}

func (uc *UseCase) getSpace(ctx context.Context, spaceID int64) (*spaceClient.Space, error) {
	space, err := uc.spaceClient.GetSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, spaceClient.ErrSpaceNotFound) {
			uc.logger.Warn("getSpace: space id=%d not found", spaceID)
			return nil, ErrSpaceNotFound
		}
		uc.logger.Error("getSpace: failed to get space id=%d: %v", spaceID, err)
		return nil, fmt.Errorf("%w: getSpace - space service error: %v", ErrInternal, err)
	}
	return space, nil
}

// notifyConfirmation отправляет клиенту письмо о подтверждении
func (uc *UseCase) notifyConfirmation(ctx context.Context, booking *domain.Booking, space *spaceClient.Space) {
	if booking.NotificationEmail == "" {
		return
	}

	msg := &notifyservice.ConfirmationMessage{
		Email:       booking.NotificationEmail,
		SpaceName:   space.Name,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		BookingCode: booking.BookingCode,
	}
	if booking.GuestName != nil {
		msg.CustomerName = *booking.GuestName
	}

	if owner, err := uc.userClient.GetUser(ctx, space.OwnerID); err != nil {
		uc.logger.Warn("notifyConfirmation: failed to get owner id=%d: %v", space.OwnerID, err)
	} else {
		msg.OwnerEmail = owner.Email
	}

	if err := uc.notifyClient.SendBookingConfirmation(ctx, msg); err != nil {
		uc.logger.Warn("notifyConfirmation: failed to send confirmation for booking id=%d: %v", booking.ID, err)
	}
}

// notifyLosers отправляет письма об отмене вытесненным бронированиям.
// К письму прикладывается карта занятости дня, чтобы клиент мог выбрать
// другой слот.
func (uc *UseCase) notifyLosers(ctx context.Context, losers []*domain.Booking, space *spaceClient.Space) {
	if len(losers) == 0 {
		return
	}

	loc := space.Location(uc.defaultLocation)

	dayBookings, err := uc.bookingRepo.GetBySpaceID(ctx, space.ID, false)
	if err != nil {
		uc.logger.Warn("notifyLosers: failed to load bookings for timeline, space=%d: %v", space.ID, err)
		dayBookings = nil
	}

	for _, loser := range losers {
		if loser.NotificationEmail == "" {
			continue
		}

		reason := ""
		if loser.CancellationReason != nil {
			reason = *loser.CancellationReason
		}

		msg := &notifyservice.CancellationMessage{
			Email:       loser.NotificationEmail,
			SpaceName:   space.Name,
			StartTime:   loser.StartTime,
			EndTime:     loser.EndTime,
			BookingCode: loser.BookingCode,
			Reason:      reason,
		}
		if loser.GuestName != nil {
			msg.CustomerName = *loser.GuestName
		}
		if dayBookings != nil {
			msg.TimelineText = bookings.BuildDayTimeline(loser.StartTime.In(loc), loc, dayBookings)
		}

		if err := uc.notifyClient.SendBookingCancellation(ctx, msg); err != nil {
			uc.logger.Warn("notifyLosers: failed to send cancellation for booking id=%d: %v", loser.ID, err)
		}
	}
}
