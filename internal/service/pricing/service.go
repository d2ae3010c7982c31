package pricing

import (
	"math"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
)

const minutesPerDay = 24 * 60

// Calculator вычисляет стоимость бронирования по тарифам пространства
type Calculator struct {
	// dayRateThresholdHours минимальная длительность в часах,
	// начиная с которой применяется дневной тариф
	dayRateThresholdHours int
}

// NewCalculator создает новый калькулятор стоимости
func NewCalculator(dayRateThresholdHours int) *Calculator {
	return &Calculator{dayRateThresholdHours: dayRateThresholdHours}
}

// Calculate вычисляет итоговую стоимость бронирования.
// Дневной тариф применяется, если он задан у пространства и длительность
// достигла порога; порог поднимается до максимальной длительности
// бронирования, когда она меньше суток. Иначе действует почасовой тариф.
// Результат округляется до копеек.
func (c *Calculator) Calculate(space *spaceservice.Space, start, end time.Time) (float64, error) {
	if !start.Before(end) {
		return 0, ErrInvalidInterval
	}

	hasHourly := space.PricePerHour > 0
	hasDaily := space.PricePerDay != nil && *space.PricePerDay > 0
	if !hasHourly && !hasDaily {
		return 0, ErrNoRateConfigured
	}

	duration := end.Sub(start)
	hours := duration.Hours()

	if hasDaily && hours >= c.effectiveThresholdHours(space) {
		days := math.Ceil(duration.Hours() / 24)
		if days < 1 {
			days = 1
		}
		return round2(*space.PricePerDay * days), nil
	}

	if !hasHourly {
		return 0, ErrNoRateConfigured
	}

	return round2(space.PricePerHour * hours), nil
}

// effectiveThresholdHours возвращает порог дневного тарифа с учетом
// максимальной длительности бронирования пространства
func (c *Calculator) effectiveThresholdHours(space *spaceservice.Space) float64 {
	threshold := float64(c.dayRateThresholdHours)

	if space.MaxBookingDurationMinutes > 0 && space.MaxBookingDurationMinutes < minutesPerDay {
		maxHours := float64(space.MaxBookingDurationMinutes) / 60
		if maxHours > threshold {
			threshold = maxHours
		}
	}

	return threshold
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
