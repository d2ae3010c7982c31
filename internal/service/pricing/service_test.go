package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/ptr"
)

func date(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func TestCalculate_HourlyRate(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{PricePerHour: 150}

	price, err := calc.Calculate(space, date(10, 0), date(12, 30))

	require.NoError(t, err)
	assert.Equal(t, 375.0, price)
}

func TestCalculate_HourlyRate_Rounding(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{PricePerHour: 99.99}

	price, err := calc.Calculate(space, date(10, 0), date(11, 20))

	require.NoError(t, err)
	// 99.99 * 1.3333... = 133.32
	assert.Equal(t, 133.32, price)
}

func TestCalculate_DayRate_AtThreshold(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{
		PricePerHour: 100,
		PricePerDay:  ptr.Ptr(500.0),
	}

	price, err := calc.Calculate(space, date(9, 0), date(17, 0))

	require.NoError(t, err)
	assert.Equal(t, 500.0, price)
}

func TestCalculate_BelowThreshold_StaysHourly(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{
		PricePerHour: 100,
		PricePerDay:  ptr.Ptr(500.0),
	}

	price, err := calc.Calculate(space, date(9, 0), date(16, 0))

	require.NoError(t, err)
	assert.Equal(t, 700.0, price)
}

func TestCalculate_DayRate_MultipleDays(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{
		PricePerHour: 100,
		PricePerDay:  ptr.Ptr(500.0),
	}

	start := date(9, 0)
	end := start.Add(25 * time.Hour) // 2 billed days

	price, err := calc.Calculate(space, start, end)

	require.NoError(t, err)
	assert.Equal(t, 1000.0, price)
}

func TestCalculate_MaxDurationRaisesThreshold(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{
		PricePerHour:              100,
		PricePerDay:               ptr.Ptr(500.0),
		MaxBookingDurationMinutes: 10 * 60,
	}

	// 9 hours reaches the configured threshold but not the raised one
	price, err := calc.Calculate(space, date(9, 0), date(18, 0))

	require.NoError(t, err)
	assert.Equal(t, 900.0, price)

	// 10 hours hits the raised threshold
	price, err = calc.Calculate(space, date(9, 0), date(19, 0))

	require.NoError(t, err)
	assert.Equal(t, 500.0, price)
}

func TestCalculate_MaxDurationOverDay_DoesNotRaiseThreshold(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{
		PricePerHour:              100,
		PricePerDay:               ptr.Ptr(500.0),
		MaxBookingDurationMinutes: 48 * 60,
	}

	price, err := calc.Calculate(space, date(9, 0), date(17, 0))

	require.NoError(t, err)
	assert.Equal(t, 500.0, price)
}

func TestCalculate_NoRateConfigured(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{}

	_, err := calc.Calculate(space, date(10, 0), date(12, 0))

	assert.ErrorIs(t, err, ErrNoRateConfigured)
}

func TestCalculate_OnlyDayRate_ShortBooking(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{PricePerDay: ptr.Ptr(500.0)}

	_, err := calc.Calculate(space, date(10, 0), date(12, 0))

	assert.ErrorIs(t, err, ErrNoRateConfigured)
}

func TestCalculate_InvalidInterval(t *testing.T) {
	calc := NewCalculator(8)
	space := &spaceservice.Space{PricePerHour: 100}

	_, err := calc.Calculate(space, date(12, 0), date(10, 0))

	assert.ErrorIs(t, err, ErrInvalidInterval)
}
