package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles billing and restaurant settings
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSnapshot returns the resolved billing settings and restaurant details
// @Router /settings [get]
func (h *SettingsHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.settingsService.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", snapshot)
}

// List returns the raw settings rows
// @Router /admin/settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateSettings upserts typed settings
// @Router /admin/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	inputs := make([]service.UpdateSettingInput, 0, len(req.Settings))
	for _, s := range req.Settings {
		inputs = append(inputs, service.UpdateSettingInput{
			Key:         s.Key,
			Value:       s.Value,
			Type:        enum.SettingType(s.Type),
			Description: s.Description,
		})
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), inputs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}
