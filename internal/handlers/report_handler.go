package handlers

import (
	"net/http"
	"time"

	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/models"

	"github.com/gin-gonic/gin"
)

// ReportData defines the shape of the analytics response
type ReportData struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int64   `json:"total_orders"`
	TopSelling   []struct {
		ProductName string  `json:"product_name"`
		Sold        int     `json:"sold"`
		Revenue     float64 `json:"revenue"`
	} `json:"top_selling"`
	RecentOrders []models.Order `json:"recent_orders"`
}

// --- GET: /api/reports ---
// Defaults to the last 30 days; override with ?from=...&to=... (RFC 3339).
func GetSalesReport(c *gin.Context) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			start = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			end = t
		}
	}

	var data ReportData

	summary, err := database.GetSalesSummary(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}
	data.TotalRevenue = summary.TotalRevenue
	data.TotalOrders = summary.TotalOrders

	// Top 5 best sellers by quantity
	err = database.DB.Table("order_items").
		Select("order_items.name as product_name, SUM(order_items.quantity) as sold, SUM(order_items.line_total) as revenue").
		Joins("JOIN orders ON order_items.order_id = orders.id").
		Where("orders.created_at BETWEEN ? AND ? AND orders.status = ?", start, end, "completed").
		Group("order_items.name").
		Order("sold desc").
		Limit(5).
		Scan(&data.TopSelling).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top selling items"})
		return
	}

	// Last 10 orders, newest first
	err = database.DB.Preload("Items").Preload("Payments").
		Order("created_at desc").Limit(10).Find(&data.RecentOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent orders"})
		return
	}

	c.JSON(http.StatusOK, data)
}
