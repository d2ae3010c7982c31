package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	UserID int64   `json:"userId"`
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID      int64 `json:"id"`
	SpaceID int64 `json:"spaceId"`

	UserID     *int64  `json:"userId,omitempty"`
	GuestName  *string `json:"guestName,omitempty"`
	GuestEmail *string `json:"guestEmail,omitempty"`

	StartTime string `json:"startTime"` // ISO 8601, UTC
	EndTime   string `json:"endTime"`   // ISO 8601, UTC
	Status    string `json:"status"`

	TotalPrice        float64 `json:"totalPrice"`
	BookingCode       string  `json:"bookingCode"`
	NotificationEmail string  `json:"notificationEmail,omitempty"`
	Notes             *string `json:"notes,omitempty"`

	IsExternalBooking bool    `json:"isExternalBooking"`
	ExternalIcalURL   *string `json:"externalIcalUrl,omitempty"`

	ActualCheckIn  *string `json:"actualCheckIn,omitempty"`
	ActualCheckOut *string `json:"actualCheckOut,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		SpaceID:            b.SpaceID,
		UserID:             b.UserID,
		GuestName:          b.GuestName,
		GuestEmail:         b.GuestEmail,
		StartTime:          b.StartTime.UTC().Format(time.RFC3339),
		EndTime:            b.EndTime.UTC().Format(time.RFC3339),
		Status:             string(b.Status),
		TotalPrice:         b.TotalPrice,
		BookingCode:        b.BookingCode,
		NotificationEmail:  b.NotificationEmail,
		Notes:              b.Notes,
		IsExternalBooking:  b.IsExternalBooking,
		ExternalIcalURL:    b.ExternalIcalURL,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.ActualCheckIn != nil {
		v := b.ActualCheckIn.UTC().Format(time.RFC3339)
		resp.ActualCheckIn = &v
	}
	if b.ActualCheckOut != nil {
		v := b.ActualCheckOut.UTC().Format(time.RFC3339)
		resp.ActualCheckOut = &v
	}
	if b.CancelledAt != nil {
		v := b.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &v
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCheckedIn,
		domain.StatusCheckout,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
		domain.StatusAbandoned,
		domain.StatusConflict,
		domain.StatusExternal,
		domain.StatusOverduePending,
		domain.StatusOverdueCheckin,
		domain.StatusOverdueCheckout,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
