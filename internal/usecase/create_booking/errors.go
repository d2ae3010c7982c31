package create_booking

import "errors"

var (
	// ErrSpaceNotFound возвращается, когда пространство не найдено
	ErrSpaceNotFound = errors.New("create_booking: space not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("create_booking: user not found")

	// ErrSpaceNotAvailable возвращается, когда пространство не принимает бронирования
	ErrSpaceNotAvailable = errors.New("create_booking: space is not available for booking")

	// ErrNoRateConfigured возвращается, когда у пространства не настроены тарифы
	ErrNoRateConfigured = errors.New("create_booking: space has no rate configured")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
