// Package handler provides HTTP handlers for the API.
// This file handles settings management API endpoints.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qrforge/qrforge/internal/model"
	"github.com/qrforge/qrforge/internal/store"
	"github.com/qrforge/qrforge/pkg/errors"
	"github.com/qrforge/qrforge/pkg/logger"
)

// sensitiveKeyPatterns defines patterns for sensitive field names that should be masked
var sensitiveKeyPatterns = []string{
	"token",
	"api_key",
	"secret",
	"password",
	"jwt_secret",
}

// maskedPlaceholder is the placeholder used in masked values
const maskedPlaceholder = "****"

// isSensitiveKey checks if a key name indicates a sensitive field
func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// maskSensitiveValue masks a sensitive string value, keeping first 4 and last 4 characters
func maskSensitiveValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return maskedPlaceholder
	}
	return value[:4] + maskedPlaceholder + value[len(value)-4:]
}

// maskSettingsValue recursively masks sensitive values in a settings structure
func maskSettingsValue(key string, value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if isSensitiveKey(key) && v != "" {
			return maskSensitiveValue(v)
		}
		return v
	case map[string]interface{}:
		result := make(map[string]interface{})
		for k, val := range v {
			result[k] = maskSettingsValue(k, val)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				masked := make(map[string]interface{})
				for k, val := range obj {
					masked[k] = maskSettingsValue(k, val)
				}
				result[i] = masked
			} else {
				result[i] = item
			}
		}
		return result
	default:
		return v
	}
}

// SettingsHandler handles settings-related API requests
type SettingsHandler struct {
	store store.Store
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(s store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// GetAllSettings returns all settings grouped by category
// GET /api/v1/admin/settings
// Sensitive values are masked to show only first 4 and last 4 characters
func (h *SettingsHandler) GetAllSettings(c *gin.Context) {
	settings, err := h.store.Settings().GetAll()
	if err != nil {
		logger.Error("Failed to get all settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to retrieve settings",
		})
		return
	}

	result := make(map[string]map[string]interface{})
	for _, setting := range settings {
		if result[setting.Category] == nil {
			result[setting.Category] = make(map[string]interface{})
		}
		var value interface{}
		if err := json.Unmarshal([]byte(setting.Value), &value); err != nil {
			value = setting.Value
		}
		result[setting.Category][setting.Key] = maskSettingsValue(setting.Key, value)
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": result,
	})
}

// GetSettingsByCategory returns settings for a specific category
// GET /api/v1/admin/settings/:category
func (h *SettingsHandler) GetSettingsByCategory(c *gin.Context) {
	category := c.Param("category")

	if !isValidSettingCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid category",
		})
		return
	}

	settings, err := h.store.Settings().GetByCategory(category)
	if err != nil {
		logger.Error("Failed to get settings by category", zap.String("category", category), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to retrieve settings",
		})
		return
	}

	result := make(map[string]interface{})
	for _, setting := range settings {
		var value interface{}
		if err := json.Unmarshal([]byte(setting.Value), &value); err != nil {
			value = setting.Value
		}
		result[setting.Key] = maskSettingsValue(setting.Key, value)
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"settings": result,
	})
}

// UpdateSettingsByCategoryRequest represents the request body for updating settings
type UpdateSettingsByCategoryRequest struct {
	Settings map[string]interface{} `json:"settings" binding:"required"`
}

// UpdateSettingsByCategory updates settings for a specific category
// PUT /api/v1/admin/settings/:category
func (h *SettingsHandler) UpdateSettingsByCategory(c *gin.Context) {
	category := c.Param("category")

	if !isValidSettingCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid category",
		})
		return
	}

	var req UpdateSettingsByCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body",
		})
		return
	}

	username, _ := c.Get("username")
	usernameStr, _ := username.(string)
	if usernameStr == "" {
		usernameStr = "admin"
	}

	batch := make([]model.SystemSetting, 0, len(req.Settings))
	for key, value := range req.Settings {
		encoded, err := json.Marshal(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    errors.ErrCodeValidation,
				"message": "Invalid value for key: " + key,
			})
			return
		}
		batch = append(batch, model.SystemSetting{
			Category:  category,
			Key:       key,
			Value:     string(encoded),
			ValueType: string(settingValueType(value)),
		})
	}

	if err := h.store.Settings().BatchUpsert(batch); err != nil {
		logger.Error("Failed to update settings", zap.String("category", category), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to update settings",
		})
		return
	}

	logger.Info("Settings updated", zap.String("category", category), zap.String("username", usernameStr))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Settings updated successfully",
	})
}

// isValidSettingCategory validates if a category is valid
func isValidSettingCategory(category string) bool {
	for _, c := range model.AllSettingCategories() {
		if string(c) == category {
			return true
		}
	}
	return false
}

// settingValueType infers the stored value type from a decoded JSON value
func settingValueType(value interface{}) model.SettingValueType {
	switch value.(type) {
	case string:
		return model.SettingValueTypeString
	case float64, int, int64:
		return model.SettingValueTypeNumber
	case bool:
		return model.SettingValueTypeBoolean
	case []interface{}:
		return model.SettingValueTypeArray
	default:
		return model.SettingValueTypeObject
	}
}
