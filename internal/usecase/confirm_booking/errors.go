package confirm_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("confirm_booking: booking not found")

	// ErrSpaceNotFound возвращается, когда пространство не найдено
	ErrSpaceNotFound = errors.New("confirm_booking: space not found")

	// ErrAccessDenied возвращается, когда подтверждает не владелец пространства
	ErrAccessDenied = errors.New("confirm_booking: access denied")

	// ErrInvalidTransition возвращается, когда бронирование нельзя подтвердить
	// из текущего статуса
	ErrInvalidTransition = errors.New("confirm_booking: invalid status transition")

	// ErrSlotNotAvailable возвращается, когда интервал занят внешним
	// бронированием, которое нельзя вытеснить
	ErrSlotNotAvailable = errors.New("confirm_booking: slot is taken by external booking")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_booking: internal error")
)
