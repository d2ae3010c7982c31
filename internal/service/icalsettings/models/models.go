package models

import (
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

// Request модели

// UpdateSettingsRequest запрос на обновление настроек календарей пространства.
// Список импортов заменяется целиком.
type UpdateSettingsRequest struct {
	UserID         int64    `json:"userId"`
	ImportIcalURLs []string `json:"importIcalUrls"`
	ExportIcalURL  *string  `json:"exportIcalUrl,omitempty"`
}

// Response модели

// SettingsResponse ответ с настройками календарей пространства
type SettingsResponse struct {
	SpaceID        int64    `json:"spaceId"`
	ImportIcalURLs []string `json:"importIcalUrls"`
	ExportIcalURL  *string  `json:"exportIcalUrl,omitempty"`

	IsSyncInProgress bool    `json:"isSyncInProgress"`
	LastSyncAttempt  *string `json:"lastSyncAttempt,omitempty"` // ISO 8601
	SyncStatus       string  `json:"syncStatus"`
	LastSyncError    *string `json:"lastSyncError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TriggerSyncResponse ответ на запуск синхронизации
type TriggerSyncResponse struct {
	SpaceID    int64  `json:"spaceId"`
	SyncStatus string `json:"syncStatus"`
}

// Методы конвертации

// FromDomainSetting конвертирует domain модель в DTO
func FromDomainSetting(s *domain.SpaceIcalSetting) *SettingsResponse {
	if s == nil {
		return nil
	}

	resp := &SettingsResponse{
		SpaceID:          s.SpaceID,
		ImportIcalURLs:   s.ImportIcalURLs,
		ExportIcalURL:    s.ExportIcalURL,
		IsSyncInProgress: s.IsSyncInProgress,
		SyncStatus:       string(s.SyncStatus),
		LastSyncError:    s.LastSyncError,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}

	if resp.ImportIcalURLs == nil {
		resp.ImportIcalURLs = []string{}
	}
	if s.LastSyncAttempt != nil {
		v := s.LastSyncAttempt.UTC().Format(time.RFC3339)
		resp.LastSyncAttempt = &v
	}

	return resp
}
