package handlers

import (
	"net/http"

	"go-pos-terminal/internal/database"

	"github.com/gin-gonic/gin"
)

func GetSettings(c *gin.Context) {
	settings, err := database.GetSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial update to the single settings row.
// A changed tax rate takes effect on the next cart a terminal opens.
func UpdateSettings(c *gin.Context) {
	settings, err := database.GetSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	delete(updateData, "id")

	if rate, ok := updateData["default_tax_rate"].(float64); ok && (rate < 0 || rate > 1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tax rate must be a fraction between 0 and 1"})
		return
	}

	if err := database.DB.Model(settings).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
