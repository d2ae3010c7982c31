package lifecycle

import "errors"

var (
	// ErrInvalidTransition возвращается при недопустимом переходе статусов
	ErrInvalidTransition = errors.New("lifecycle.service: status transition not allowed")

	// ErrReasonRequired возвращается, когда отмена запрошена без причины
	ErrReasonRequired = errors.New("lifecycle.service: cancellation reason is required")

	// ErrReasonTooLong возвращается при превышении лимита длины причины отмены
	ErrReasonTooLong = errors.New("lifecycle.service: cancellation reason is too long")
)
