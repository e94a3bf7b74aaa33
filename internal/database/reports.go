package database

import (
	"go-pos-terminal/internal/models"
	"time"
)

// SalesReportResult summarizes completed orders in a date range
type SalesReportResult struct {
	TotalRevenue float64
	TotalOrders  int64
}

// GetSalesSummary calculates revenue and order count within a date range.
// Cancelled and refunded orders do not count toward revenue.
func GetSalesSummary(start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no orders exist
	err := DB.Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ? AND status = ?", start, end, "completed").
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ? AND status = ?", start, end, "completed").
		Count(&result.TotalOrders).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
