package create_booking

import (
	"fmt"
	"net/mail"
	"strings"
)

// validateRequest проверяет корректность запроса на создание бронирования
func (uc *UseCase) validateRequest(req *Request) error {
	if req.SpaceID <= 0 {
		return fmt.Errorf("%w: space_id is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", ErrInvalidInput)
	}

	if err := uc.validateIdentity(req); err != nil {
		return err
	}

	return nil
}

// validateIdentity проверяет, что указан ровно один способ идентификации:
// либо зарегистрированный пользователь, либо гость с именем и email
func (uc *UseCase) validateIdentity(req *Request) error {
	hasUser := req.UserID != nil
	hasGuest := req.GuestName != nil || req.GuestEmail != nil

	if hasUser && hasGuest {
		return fmt.Errorf("%w: either user_id or guest identity must be set, not both", ErrInvalidInput)
	}

	if hasUser {
		if *req.UserID <= 0 {
			return fmt.Errorf("%w: user_id must be positive", ErrInvalidInput)
		}
		return nil
	}

	if req.GuestName == nil || strings.TrimSpace(*req.GuestName) == "" {
		return fmt.Errorf("%w: guest_name is required for guest bookings", ErrInvalidInput)
	}
	if req.GuestEmail == nil || strings.TrimSpace(*req.GuestEmail) == "" {
		return fmt.Errorf("%w: guest_email is required for guest bookings", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(*req.GuestEmail); err != nil {
		return fmt.Errorf("%w: invalid guest_email %q", ErrInvalidInput, *req.GuestEmail)
	}

	return nil
}
