package handlers

import (
	"fmt"
	"net/http"

	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- GET: Order history for the back office ---
func GetOrders(c *gin.Context) {
	query := database.DB.Preload("Items").Preload("Payments").Preload("Customer").
		Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	var orders []models.Order
	if err := query.Limit(200).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func GetOrder(c *gin.Context) {
	var order models.Order
	err := database.DB.Preload("Items").Preload("Items.Product").
		Preload("Payments").Preload("Customer").
		First(&order, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled refunded"`
}

// --- PUT: Refund or cancel a completed order ---
// Refunding puts the sold quantities back into stock inside one transaction.
func UpdateOrderStatus(c *gin.Context) {
	var input OrderStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var order models.Order
	if err := database.DB.Preload("Items").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if order.Status == input.Status {
		c.JSON(http.StatusOK, order)
		return
	}
	if order.Status != "completed" && order.Status != "pending" {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Cannot change a %s order", order.Status)})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if input.Status == "refunded" {
			for _, item := range order.Items {
				// Atomic increment; the UPDATE itself locks the row
				err := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
				if err != nil {
					return err
				}
			}
		}
		return tx.Model(&order).Update("status", input.Status).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	c.JSON(http.StatusOK, order)
}
