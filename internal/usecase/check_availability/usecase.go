package check_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	spaceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/pricing"
)

// UseCase проверка доступности интервала без создания бронирования.
// Для доступного интервала дополнительно считается стоимость,
// чтобы клиент видел цену до оформления.
type UseCase struct {
	bookingRepo  BookingRepository
	spaceClient  SpaceServiceClient
	availability AvailabilityChecker
	pricing      PriceCalculator
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает usecase проверки доступности
func NewUseCase(
	bookingRepo BookingRepository,
	spaceServiceClient SpaceServiceClient,
	availabilityChecker AvailabilityChecker,
	priceCalculator PriceCalculator,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		spaceClient:  spaceServiceClient,
		availability: availabilityChecker,
		pricing:      priceCalculator,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute проверяет доступность интервала для бронирования.
// Нарушение правил интервала или занятый слот — не ошибка, а ответ
// available=false с причиной.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Execute: checking availability for space=%d interval %s - %s",
		req.SpaceID, req.StartTime.UTC().Format(time.RFC3339), req.EndTime.UTC().Format(time.RFC3339))

	// 1. Валидация запроса
	if req.SpaceID <= 0 {
		return nil, fmt.Errorf("%w: space_id is required", ErrInvalidInput)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidInput)
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

	// 3. Активные бронирования пространства
	existing, err := uc.bookingRepo.GetBySpaceID(ctx, req.SpaceID, false)
	if err != nil {
		uc.logger.Error("Execute: failed to load bookings for space=%d: %v", req.SpaceID, err)
		return nil, fmt.Errorf("%w: Execute - failed to load space bookings: %v", ErrInternal, err)
	}

	resp := &Response{
		SpaceID:   req.SpaceID,
		StartTime: req.StartTime.UTC().Format(time.RFC3339),
		EndTime:   req.EndTime.UTC().Format(time.RFC3339),
	}

	// 4. Полная проверка: правила интервала + занятость с буферами
	now := uc.timeProvider.Now()
	if err := uc.availability.CheckStrict(space, req.StartTime, req.EndTime, now, existing); err != nil {
		if isAvailabilityVerdict(err) {
			resp.Available = false
			resp.Reason = err.Error()
			return resp, nil
		}
		return nil, fmt.Errorf("%w: Execute - availability check error: %v", ErrInternal, err)
	}

	resp.Available = true

	// 5. Стоимость для доступного интервала (best-effort: пространство
	// без тарифов остается доступным, но без цены)
	price, err := uc.pricing.Calculate(space, req.StartTime, req.EndTime)
	if err != nil {
		if !errors.Is(err, pricing.ErrNoRateConfigured) {
			uc.logger.Warn("Execute: pricing failed for space=%d: %v", req.SpaceID, err)
		}
	} else {
		resp.TotalPrice = &price
	}

	return resp, nil
}

// isAvailabilityVerdict отличает вердикт "интервал недоступен"
// от технической ошибки проверки
func isAvailabilityVerdict(err error) bool {
	return errors.Is(err, availability.ErrInvalidInterval) ||
		errors.Is(err, availability.ErrStartInPast) ||
		errors.Is(err, availability.ErrSpaceNotAvailable) ||
		errors.Is(err, availability.ErrOutsideOpenHours) ||
		errors.Is(err, availability.ErrDurationTooShort) ||
		errors.Is(err, availability.ErrDurationTooLong) ||
		errors.Is(err, availability.ErrSlotTaken)
}
