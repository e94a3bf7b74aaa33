package handlers

import (
	"errors"
	"net/http"

	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetTables(c *gin.Context) {
	var tables []models.Table
	if err := database.DB.Order("number").Find(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tables"})
		return
	}
	c.JSON(http.StatusOK, tables)
}

type TableRequest struct {
	Number string `json:"number" binding:"required"`
	Seats  int    `json:"seats" binding:"required,gt=0"`
}

func AddTable(c *gin.Context) {
	var input TableRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	table := models.Table{Number: input.Number, Seats: input.Seats, Status: "vacant"}
	if err := database.DB.Create(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A table with this number already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}
	c.JSON(http.StatusCreated, table)
}

type TableStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=vacant occupied reserved cleaning"`
}

func UpdateTableStatus(c *gin.Context) {
	var table models.Table
	if err := database.DB.First(&table, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}

	var input TableStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if err := database.DB.Model(&table).Update("status", input.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update table"})
		return
	}
	c.JSON(http.StatusOK, table)
}

func DeleteTable(c *gin.Context) {
	if err := database.DB.Delete(&models.Table{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete table"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
}
