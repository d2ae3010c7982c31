package notifyservice

import "time"

// ConfirmationMessage параметры письма о подтверждении бронирования.
// Сервис поставляет только структурированное содержимое;
// шаблоны и доставка — на стороне NotifyService.
type ConfirmationMessage struct {
	Email        string    `json:"email"`
	CustomerName string    `json:"customerName"`
	SpaceName    string    `json:"spaceName"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	BookingCode  string    `json:"bookingCode"`
	OwnerEmail   string    `json:"ownerEmail"`
}

// CancellationMessage параметры письма об отмене бронирования
type CancellationMessage struct {
	Email        string    `json:"email"`
	CustomerName string    `json:"customerName"`
	SpaceName    string    `json:"spaceName"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	BookingCode  string    `json:"bookingCode"`
	Reason       string    `json:"reason"`

	// TimelineText почасовая карта занятости дня (06:00-23:00),
	// прикладывается к системным отменам
	TimelineText string `json:"timelineText,omitempty"`
}

// SyncConflictMessage уведомление о кластере пересекающихся бронирований,
// найденном при синхронизации внешних календарей. Одно сообщение на кластер.
type SyncConflictMessage struct {
	SpaceID    int64     `json:"spaceId"`
	BookingIDs []int64   `json:"bookingIds"`
	DetectedAt time.Time `json:"detectedAt"`
}

// ErrorResponse модель ошибки от NotifyService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
