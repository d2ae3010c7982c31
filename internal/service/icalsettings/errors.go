package icalsettings

import "errors"

var (
	// ErrSettingsNotFound возвращается, когда настройки календарей не найдены
	ErrSettingsNotFound = errors.New("ical settings not found")

	// ErrSpaceNotFound возвращается, когда пространство не найдено
	ErrSpaceNotFound = errors.New("space not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrSyncInProgress возвращается, когда синхронизация уже идет
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrNoImportsConfigured возвращается, когда импортируемых календарей нет
	ErrNoImportsConfigured = errors.New("no import calendars configured")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
