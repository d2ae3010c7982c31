package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewBookingCode генерирует короткий человекочитаемый код бронирования
func NewBookingCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:BookingCodeLength])
}
