package check_availability

import "time"

// Request модель запроса проверки доступности интервала
type Request struct {
	SpaceID   int64
	StartTime time.Time // UTC
	EndTime   time.Time // UTC
}

// Response результат проверки доступности.
// Reason заполняется только для недоступного интервала,
// TotalPrice — только для доступного.
type Response struct {
	SpaceID   int64  `json:"spaceId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`

	TotalPrice *float64 `json:"totalPrice,omitempty"`
}
