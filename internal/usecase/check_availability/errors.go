package check_availability

import "errors"

var (
	// ErrSpaceNotFound возвращается, когда пространство не найдено
	ErrSpaceNotFound = errors.New("check_availability: space not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("check_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_availability: internal error")
)
