package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
	spaceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	userClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/pricing"
)

// UseCase создание бронирования пространства
type UseCase struct {
	bookingRepo  BookingRepository
	spaceClient  SpaceServiceClient
	userClient   UserServiceClient
	availability AvailabilityChecker
	pricing      PriceCalculator
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// NewUseCase создает usecase создания бронирования
func NewUseCase(
	bookingRepo BookingRepository,
	spaceClient SpaceServiceClient,
	userClient UserServiceClient,
	availabilityChecker AvailabilityChecker,
	priceCalculator PriceCalculator,
	timeProvider TimeProvider,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		spaceClient:  spaceClient,
		userClient:   userClient,
		availability: availabilityChecker,
		pricing:      priceCalculator,
		timeProvider: timeProvider,
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute создает бронирование в статусе pending.
// Проверяются только правила пространства; пересечение с другими
// бронированиями не мешает созданию — несколько заявок на один слот
// сосуществуют, пока владелец не подтвердит одну из них.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Execute: creating booking for space=%d", req.SpaceID)

	// 1. Валидация запроса
	if err := uc.validateRequest(req); err != nil {
		uc.logger.Warn("Execute: validation failed: %v", err)
		return nil, err
	}

	// 2. Получение пространства
	space, err := uc.spaceClient.GetSpace(ctx, req.SpaceID)
	if err != nil {
		if errors.Is(err, spaceClient.ErrSpaceNotFound) {
			uc.logger.Warn("Execute: space id=%d not found", req.SpaceID)
			return nil, ErrSpaceNotFound
		}
		uc.logger.Error("Execute: failed to get space id=%d: %v", req.SpaceID, err)
		return nil, fmt.Errorf("%w: Execute - space service error: %v", ErrInternal, err)
	}

	// 3. Определение email для уведомлений: у пользователя — из профиля,
	// у гостя — из запроса
	notificationEmail, err := uc.resolveNotificationEmail(ctx, req)
	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 4. Правила пространства: интервал, рабочие часы, длительность
	if err := uc.availability.ValidateInterval(space, req.StartTime, req.EndTime, now); err != nil {
		return nil, uc.mapAvailabilityError(req.SpaceID, err)
	}

	// 5. Расчет стоимости
	price, err := uc.pricing.Calculate(space, req.StartTime, req.EndTime)
	if err != nil {
		return nil, uc.mapPricingError(req.SpaceID, err)
	}

	booking := &domain.Booking{
		SpaceID:           req.SpaceID,
		UserID:            req.UserID,
		GuestName:         req.GuestName,
		GuestEmail:        req.GuestEmail,
		StartTime:         req.StartTime.UTC(),
		EndTime:           req.EndTime.UTC(),
		Status:            domain.StatusPending,
		TotalPrice:        price,
		BookingCode:       domain.NewBookingCode(),
		NotificationEmail: notificationEmail,
		Notes:             req.Notes,
		CreatedBy:         req.UserID,
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		uc.logger.Error("Execute: failed to create booking for space=%d: %v", req.SpaceID, err)
		return nil, fmt.Errorf("%w: Execute - failed to create booking: %v", ErrInternal, err)
	}

	uc.metrics.IncBookingsCreated()

	// 6. Пересчет статуса пространства (best-effort, бронь уже создана)
	if err := uc.spaceClient.RecomputeStatus(ctx, req.SpaceID); err != nil {
		uc.logger.Error("Execute: failed to recompute space status id=%d: %v", req.SpaceID, err)
	}

	uc.logger.Info("Execute: successfully created booking id=%d code=%s space=%d",
		created.ID, created.BookingCode, created.SpaceID)

	return models.FromDomainBooking(created), nil
}

// resolveNotificationEmail определяет адрес для уведомлений по бронированию
func (uc *UseCase) resolveNotificationEmail(ctx context.Context, req *Request) (string, error) {
	if req.UserID == nil {
		return *req.GuestEmail, nil
	}

	user, err := uc.userClient.GetUser(ctx, *req.UserID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			uc.logger.Warn("resolveNotificationEmail: user id=%d not found", *req.UserID)
			return "", ErrUserNotFound
		}
		uc.logger.Error("resolveNotificationEmail: failed to get user id=%d: %v", *req.UserID, err)
		return "", fmt.Errorf("%w: resolveNotificationEmail - user service error: %v", ErrInternal, err)
	}

	return user.Email, nil
}

// mapPricingError переводит ошибки расчета стоимости в ошибки usecase
func (uc *UseCase) mapPricingError(spaceID int64, err error) error {
	switch {
	case errors.Is(err, pricing.ErrNoRateConfigured):
		uc.logger.Warn("Execute: space id=%d has no rate configured", spaceID)
		return ErrNoRateConfigured
	case errors.Is(err, pricing.ErrInvalidInterval):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		uc.logger.Error("Execute: pricing error for space id=%d: %v", spaceID, err)
		return fmt.Errorf("%w: Execute - pricing error: %v", ErrInternal, err)
	}
}

// mapAvailabilityError переводит ошибки проверки правил в ошибки usecase
func (uc *UseCase) mapAvailabilityError(spaceID int64, err error) error {
	switch {
	case errors.Is(err, availability.ErrSpaceNotAvailable):
		return fmt.Errorf("%w: %v", ErrSpaceNotAvailable, err)
	case errors.Is(err, availability.ErrInvalidInterval),
		errors.Is(err, availability.ErrStartInPast),
		errors.Is(err, availability.ErrOutsideOpenHours),
		errors.Is(err, availability.ErrDurationTooShort),
		errors.Is(err, availability.ErrDurationTooLong):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: Execute - availability check error: %v", ErrInternal, err)
	}
}
