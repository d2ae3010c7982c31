package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrSpaceNotFound возвращается, когда пространство не найдено
	ErrSpaceNotFound = errors.New("space not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrCancellationWindowPassed возвращается, когда пользователь отменяет
	// бронирование позже допустимого срока
	ErrCancellationWindowPassed = errors.New("cancellation window has passed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
