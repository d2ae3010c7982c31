package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimeString время дня в формате HH:MM ("10:30")
// Используется для времени открытия/закрытия и отображения расписаний.
type TimeString string

const timeStringLayout = "15:04"

var errInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeStringLayout))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	if _, err := time.Parse(timeStringLayout, string(t)); err != nil {
		return errInvalidTimeString
	}
	return nil
}

// IsZero возвращает true, если значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с начала дня
func (t TimeString) Minutes() (int, error) {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return 0, errInvalidTimeString
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AddMinutes возвращает новый TimeString, сдвинутый на minutes вперед.
// Переход через полночь оборачивается (23:50 + 20 = 00:10).
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return "", errInvalidTimeString
	}
	return TimeString(parsed.Add(time.Duration(minutes) * time.Minute).Format(timeStringLayout)), nil
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// At возвращает момент времени с этим временем дня в дате day и локации loc
func (t TimeString) At(day time.Time, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return time.Time{}, errInvalidTimeString
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// Value реализует driver.Valuer для записи в БД
func (t TimeString) Value() (driver.Value, error) {
	if t == "" {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// Scan реализует sql.Scanner для чтения из БД
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		*t = TimeString(v)
		return nil
	case []byte:
		*t = TimeString(v)
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into TimeString", src)
	}
}
