package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-SpaceBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model.
// Для гостевого бронирования передаются guestName и guestEmail,
// для пользовательского userID берется из заголовка X-User-ID.
type CreateBookingRequest struct {
	SpaceID    int64   `json:"spaceId"`
	StartTime  string  `json:"startTime"` // RFC3339
	EndTime    string  `json:"endTime"`   // RFC3339
	GuestName  *string `json:"guestName,omitempty"`
	GuestEmail *string `json:"guestEmail,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID *int64) (*createBooking.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		SpaceID:    r.SpaceID,
		UserID:     userID,
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
		StartTime:  startTime.UTC(),
		EndTime:    endTime.UTC(),
		Notes:      r.Notes,
	}, nil
}
