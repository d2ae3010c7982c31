package ical

import "errors"

var (
	// ErrSyncInProgress возвращается, когда синхронизация пространства уже идет
	ErrSyncInProgress = errors.New("ical.service: sync already in progress for this space")

	// ErrNoImportsConfigured возвращается, когда у пространства нет импортируемых календарей
	ErrNoImportsConfigured = errors.New("ical.service: no import calendars configured")

	// ErrSettingNotFound возвращается, когда настройки календарей не найдены
	ErrSettingNotFound = errors.New("ical.service: ical settings not found")
)
