package update_ical_settings

// UpdateSettingsRequest HTTP request model
type UpdateSettingsRequest struct {
	ImportIcalURLs []string `json:"importIcalUrls"`
	ExportIcalURL  *string  `json:"exportIcalUrl,omitempty"`
}
