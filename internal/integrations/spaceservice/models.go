package spaceservice

import (
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/pkg/types"
)

// SpaceStatus статус пространства в SpaceService
type SpaceStatus string

const (
	SpaceStatusAvailable   SpaceStatus = "available"
	SpaceStatusBooked      SpaceStatus = "booked"
	SpaceStatusMaintenance SpaceStatus = "maintenance"
	SpaceStatusDraft       SpaceStatus = "draft"
	SpaceStatusDisabled    SpaceStatus = "disabled"
)

// Space модель пространства из SpaceService.
// Бронирования читают её, но никогда не изменяют — владелец данных SpaceService.
type Space struct {
	ID      int64       `json:"id"`
	OwnerID int64       `json:"ownerId"`
	Name    string      `json:"name"`
	Status  SpaceStatus `json:"status"`

	// Timezone фиксированная гражданская таймзона пространства (IANA),
	// используется только для проверок рабочих часов и рендера расписаний
	Timezone string `json:"timezone"`

	// OpenTime/CloseTime рабочие часы (локальное время дня); nil = без ограничения.
	// CloseTime "00:00" означает круглосуточную работу.
	OpenTime  *types.TimeString `json:"openTime"`
	CloseTime *types.TimeString `json:"closeTime"`

	MinBookingDurationMinutes int `json:"minBookingDurationMinutes"`
	// MaxBookingDurationMinutes 0 = без ограничения
	MaxBookingDurationMinutes int `json:"maxBookingDurationMinutes"`

	CancellationNoticeHours int `json:"cancellationNoticeHours"`
	CleaningDurationMinutes int `json:"cleaningDurationMinutes"`
	BufferMinutes           int `json:"bufferMinutes"`

	PricePerHour float64  `json:"pricePerHour"`
	PricePerDay  *float64 `json:"pricePerDay"`
}

// IsBookable возвращает true, если пространство принимает бронирования
func (s *Space) IsBookable() bool {
	return s.Status == SpaceStatusAvailable
}

// Location возвращает таймзону пространства; при пустой или некорректной
// настройке используется fallback
func (s *Space) Location(fallback *time.Location) *time.Location {
	if s.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// ErrorResponse модель ошибки от SpaceService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
