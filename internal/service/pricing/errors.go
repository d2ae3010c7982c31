package pricing

import "errors"

var (
	// ErrNoRateConfigured возвращается, когда у пространства не задан
	// ни почасовой, ни дневной тариф
	ErrNoRateConfigured = errors.New("pricing.service: space has no rate configured")

	// ErrInvalidInterval возвращается при некорректном интервале бронирования
	ErrInvalidInterval = errors.New("pricing.service: invalid booking interval")
)
