package domain

// Default booking rule values
const (
	// DefaultPastStartToleranceMinutes допуск на рассинхронизацию часов клиента:
	// начало бронирования может быть не раньше, чем now - tolerance
	DefaultPastStartToleranceMinutes = 5

	// DefaultCheckinGraceMinutes время после начала брони, по истечении которого
	// подтвержденная бронь без заезда становится overdue_checkin
	DefaultCheckinGraceMinutes = 30

	// DefaultCheckoutGraceMinutes время после конца брони, по истечении которого
	// бронь без выезда становится overdue_checkout
	DefaultCheckoutGraceMinutes = 15

	// DefaultDayRateThresholdHours минимальная длительность в часах,
	// начиная с которой применяется дневной тариф (если он задан)
	DefaultDayRateThresholdHours = 8

	// DefaultExportWindowDays глубина окна экспорта календаря в прошлое
	DefaultExportWindowDays = 30
)

// Timeline rendering bounds (local time), used in cancellation notifications
const (
	TimelineStartHour = 6
	TimelineEndHour   = 23
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// BookingCodeLength длина человекочитаемого кода бронирования
const BookingCodeLength = 8

// MaxCancellationReasonLength предельная длина причины отмены
const MaxCancellationReasonLength = 500
