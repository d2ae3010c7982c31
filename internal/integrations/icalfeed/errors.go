package icalfeed

import "errors"

var (
	// ErrFetchFailed возвращается, когда внешний календарь недоступен
	ErrFetchFailed = errors.New("icalfeed client: failed to fetch calendar")

	// ErrParseFailed возвращается при некорректном содержимом календаря
	ErrParseFailed = errors.New("icalfeed client: failed to parse calendar")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("icalfeed client: internal error")
)
