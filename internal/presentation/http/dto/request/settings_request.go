package request

// SettingRequest is one key/value pair to upsert
type SettingRequest struct {
	Key         string  `json:"key" binding:"required"`
	Value       string  `json:"value"`
	Type        string  `json:"type" binding:"omitempty,oneof=string number boolean"`
	Description *string `json:"description"`
}

// UpdateSettingsRequest upserts several settings at once
type UpdateSettingsRequest struct {
	Settings []SettingRequest `json:"settings" binding:"required,dive"`
}
