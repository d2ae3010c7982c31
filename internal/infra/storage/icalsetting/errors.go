package icalsetting

import "errors"

var (
	// ErrSettingNotFound возвращается, когда настройки календарей не найдены
	ErrSettingNotFound = errors.New("icalsetting.repository: setting not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("icalsetting.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("icalsetting.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("icalsetting.repository: failed to scan row")
)
