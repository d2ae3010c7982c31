package availability

import "errors"

var (
	// ErrInvalidInterval возвращается при некорректном интервале (start >= end)
	ErrInvalidInterval = errors.New("availability.service: start must be before end")

	// ErrStartInPast возвращается, когда начало бронирования в прошлом
	// за пределами допустимого допуска
	ErrStartInPast = errors.New("availability.service: start time is in the past")

	// ErrSpaceNotAvailable возвращается, когда пространство не принимает бронирования
	ErrSpaceNotAvailable = errors.New("availability.service: space is not available for booking")

	// ErrOutsideOpenHours возвращается, когда интервал выходит за рабочие часы пространства
	ErrOutsideOpenHours = errors.New("availability.service: booking is outside space open hours")

	// ErrDurationTooShort возвращается при длительности меньше минимальной
	ErrDurationTooShort = errors.New("availability.service: booking duration is below the minimum")

	// ErrDurationTooLong возвращается при длительности больше максимальной
	ErrDurationTooLong = errors.New("availability.service: booking duration exceeds the maximum")

	// ErrSlotTaken возвращается, когда интервал пересекается с блокирующим бронированием
	ErrSlotTaken = errors.New("availability.service: requested slot overlaps an existing booking")
)
