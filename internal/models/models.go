package models

import (
	"time"
)

// User - staff member operating the terminal
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'manager', 'cashier'
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category - product grouping shown on the sales grid
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"uniqueIndex;size:80" json:"name"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Product - the catalog
type Product struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Name       string   `gorm:"size:120" json:"name"`
	Price      float64  `json:"price"`
	Cost       float64  `json:"cost"`
	Stock      int      `json:"stock"`
	Barcode    string   `gorm:"index;size:64" json:"barcode"`
	CategoryID uint     `json:"category_id"`
	Category   Category `json:"category"`
	ImageURL   string   `json:"image_url"`
	IsActive   bool     `gorm:"default:true" json:"is_active"`
}

// Customer - loyalty and contact record
type Customer struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:120" json:"name"`
	Phone         string     `gorm:"size:32" json:"phone"`
	Email         string     `gorm:"size:120" json:"email"`
	LoyaltyPoints int        `json:"loyalty_points"`
	TotalSpent    float64    `json:"total_spent"`
	LastVisit     *time.Time `json:"last_visit"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
}

// Table - a seat assignment for dine-in orders
type Table struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"uniqueIndex;size:16" json:"number"`
	Seats  int    `json:"seats"`
	Status string `gorm:"default:vacant" json:"status"` // 'vacant', 'occupied', 'reserved', 'cleaning'
}

// Settings - single-row store configuration
type Settings struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	StoreName      string  `gorm:"size:120" json:"store_name"`
	CurrencyCode   string  `gorm:"size:8;default:USD" json:"currency_code"`
	DefaultTaxRate float64 `gorm:"default:0.1" json:"default_tax_rate"` // fraction, 0.1 = 10%
	TaxInclusive   bool    `json:"tax_inclusive"`
	PointsPerUnit  float64 `gorm:"default:1" json:"points_per_unit"`    // loyalty points per currency unit spent
	UnitsPerPoint  float64 `gorm:"default:0.01" json:"units_per_point"` // currency value of one point
	MinRedemption  int     `gorm:"default:100" json:"min_redemption"`
	LoyaltyActive  bool    `gorm:"default:true" json:"loyalty_active"`
}

// Order - a finalized sale, written once at checkout
type Order struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TerminalID    string         `gorm:"size:32" json:"terminal_id"`
	CashierID     uint           `json:"cashier_id"`
	CustomerID    *uint          `json:"customer_id"`
	Customer      *Customer      `json:"customer,omitempty"`
	TableID       *uint          `json:"table_id"`
	Subtotal      float64        `json:"subtotal"`
	DiscountTotal float64        `json:"discount_total"`
	TaxTotal      float64        `json:"tax_total"`
	Total         float64        `json:"total"`
	Status        string         `gorm:"default:completed" json:"status"` // 'pending', 'completed', 'cancelled', 'refunded'
	Notes         string         `json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	Items         []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	Payments      []OrderPayment `gorm:"foreignKey:OrderID" json:"payments"`
}

// OrderItem - one cart line at the moment of sale
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `json:"order_id"`
	ProductID uint    `json:"product_id"`
	Product   Product `json:"product"` // Preload product details
	Name      string  `gorm:"size:120" json:"name"` // snapshot, survives catalog renames
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"` // price at sale, after any cashier override
	Discount  float64 `json:"discount"`
	LineTotal float64 `json:"line_total"`
}

// OrderPayment - one tender recorded against the order
type OrderPayment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `json:"order_id"`
	Method      string  `gorm:"size:16" json:"method"`
	Amount      float64 `json:"amount"`
	Applied     float64 `json:"applied"`
	ChangeGiven float64 `json:"change_given"`
	Reference   string  `gorm:"size:64" json:"reference"`
}
