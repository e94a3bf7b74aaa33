package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/models"
	"go-pos-terminal/internal/terminal"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest points the package globals at a fresh in-memory database and a
// fresh session registry, and returns a router with a stubbed-in cashier.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// A named in-memory database: plain ":memory:" would give every pooled
	// connection its own empty database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	database.Migrate(db)
	database.DB = db

	Terminals = terminal.NewManager(func() decimal.Decimal {
		settings, err := database.GetSettings()
		require.NoError(t, err)
		return decimal.NewFromFloat(settings.DefaultTaxRate)
	})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", uint(1))
		c.Set("role", "admin")
	})

	r.GET("/products", GetProducts)
	r.POST("/products", AddProduct)
	r.PUT("/products/:id", UpdateProduct)
	r.GET("/scan/:barcode", ScanProduct)
	r.POST("/categories", AddCategory)
	r.POST("/customers", AddCustomer)
	r.GET("/settings", GetSettings)
	r.PUT("/settings", UpdateSettings)
	r.GET("/orders", GetOrders)
	r.PUT("/orders/:id/status", UpdateOrderStatus)

	term := r.Group("/terminals/:terminal/cart")
	term.GET("", GetCart)
	term.POST("/lines", AddCartLine)
	term.PATCH("/lines/:lineId", UpdateCartLine)
	term.PUT("/lines/:lineId/discount", SetLineDiscount)
	term.DELETE("/lines/:lineId", RemoveCartLine)
	term.PUT("/customer", SetCartCustomer)
	term.PUT("/discount", SetCartDiscount)
	term.POST("/payments", AddCartPayment)
	term.DELETE("/payments/:paymentId", RemoveCartPayment)
	term.POST("/checkout", Checkout)
	term.POST("/clear", ClearCart)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedProduct(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, database.DB.Create(&p).Error)
	return p
}

func cartSummary(t *testing.T, r *gin.Engine, terminalID string) map[string]any {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/terminals/"+terminalID+"/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	return summary
}

func TestAddProductAndBarcodeScan(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/products", gin.H{
		"name": "Flat White", "price": 4.20, "stock": 10, "barcode": "111222333",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/scan/111222333", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, "Flat White", product.Name)

	w = doJSON(t, r, http.MethodGet, "/scan/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateCategoryNameConflicts(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Drinks"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Drinks"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Set menu", 50, 10)

	// Add a line, default quantity 1
	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	summary := cartSummary(t, r, "T1")
	assert.Equal(t, "55", summary["total"], "50 plus 10 percent tax") // decimal marshals as a string
	assert.Equal(t, false, summary["is_settled"])

	// Partial card payment leaves a balance and blocks checkout
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/payments", gin.H{"method": "card", "amount": 20})
	require.Equal(t, http.StatusCreated, w.Code)

	summary = cartSummary(t, r, "T1")
	assert.Equal(t, "35", summary["balance"])

	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/checkout", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Cash for the rest, tendered over: change comes back
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/payments", gin.H{"method": "cash", "amount": 40})
	require.Equal(t, http.StatusCreated, w.Code)

	summary = cartSummary(t, r, "T1")
	assert.Equal(t, "0", summary["balance"])
	assert.Equal(t, "5", summary["change_due"])
	assert.Equal(t, true, summary["is_settled"])

	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Cart cleared, order written, stock deducted
	summary = cartSummary(t, r, "T1")
	assert.Empty(t, summary["lines"])

	var order models.Order
	require.NoError(t, database.DB.Preload("Items").Preload("Payments").First(&order).Error)
	assert.Equal(t, "completed", order.Status)
	assert.Equal(t, "T1", order.TerminalID)
	assert.InDelta(t, 55.0, order.Total, 0.001)
	require.Len(t, order.Items, 1)
	require.Len(t, order.Payments, 2)

	var product models.Product
	require.NoError(t, database.DB.First(&product, p.ID).Error)
	assert.Equal(t, 9, product.Stock)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Scarce", 10, 1)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID, "quantity": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/payments", gin.H{"method": "cash", "amount": 33})
	require.Equal(t, http.StatusCreated, w.Code)

	// Only 1 in stock, 3 in the cart
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The sale is untouched: lines and payments still there, nothing persisted
	summary := cartSummary(t, r, "T1")
	assert.Len(t, summary["lines"], 1)
	assert.Len(t, summary["payments"], 1)

	var count int64
	database.DB.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)

	var product models.Product
	require.NoError(t, database.DB.First(&product, p.ID).Error)
	assert.Equal(t, 1, product.Stock, "failed checkout must not touch stock")
}

func TestDiscountOrderingOverHTTP(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Platter", 100, 10)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var line map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &line))
	lineID := line["id"].(string)

	w = doJSON(t, r, http.MethodPut, "/terminals/T1/cart/lines/"+lineID+"/discount",
		gin.H{"amount": 10, "kind": "percentage"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPut, "/terminals/T1/cart/discount",
		gin.H{"amount": 10, "kind": "percentage"})
	require.Equal(t, http.StatusOK, w.Code)

	summary := cartSummary(t, r, "T1")
	assert.Equal(t, "90", summary["subtotal"])
	assert.Equal(t, "9", summary["cart_discount_amount"])
	assert.Equal(t, "8.1", summary["tax"])
	assert.Equal(t, "89.1", summary["total"])
}

func TestNonPositiveInputsRejected(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Espresso", 3.5, 10)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID, "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/payments", gin.H{"method": "cash", "amount": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	summary := cartSummary(t, r, "T1")
	assert.Empty(t, summary["payments"])
}

func TestSetQuantityZeroRemovesLineOverHTTP(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Espresso", 3.5, 10)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var line map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &line))
	lineID := line["id"].(string)

	w = doJSON(t, r, http.MethodPatch, "/terminals/T1/cart/lines/"+lineID, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	summary := cartSummary(t, r, "T1")
	assert.Empty(t, summary["lines"])

	// Deleting the already-removed line stays a 200 no-op
	w = doJSON(t, r, http.MethodDelete, "/terminals/T1/cart/lines/"+lineID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTerminalsDoNotShareCarts(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Espresso", 3.5, 10)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	summary := cartSummary(t, r, "T2")
	assert.Empty(t, summary["lines"])
}

func TestLoyaltyPaymentRequiresCustomer(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Set menu", 50, 10)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/payments", gin.H{"method": "loyalty", "amount": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoyaltyAccrualOnCheckout(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Set menu", 50, 10)

	customer := models.Customer{Name: "Ada", LoyaltyPoints: 0, IsActive: true}
	require.NoError(t, database.DB.Create(&customer).Error)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPut, "/terminals/T1/cart/customer", gin.H{"customer_id": customer.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/payments", gin.H{"method": "cash", "amount": 55})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Customer
	require.NoError(t, database.DB.First(&updated, customer.ID).Error)
	// Default settings: 1 point per currency unit on a 55.00 total
	assert.Equal(t, 55, updated.LoyaltyPoints)
	assert.InDelta(t, 55.0, updated.TotalSpent, 0.001)
	require.NotNil(t, updated.LastVisit)
}

func TestRefundRestoresStock(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Set menu", 50, 5)

	w := doJSON(t, r, http.MethodPost, "/terminals/T1/cart/lines", gin.H{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/payments", gin.H{"method": "card", "amount": 110})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/terminals/T1/cart/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var product models.Product
	require.NoError(t, database.DB.First(&product, p.ID).Error)
	require.Equal(t, 3, product.Stock)

	var order models.Order
	require.NoError(t, database.DB.First(&order).Error)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": "refunded"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, database.DB.First(&product, p.ID).Error)
	assert.Equal(t, 5, product.Stock)

	// Refunding twice is rejected
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTaxRateComesFromSettings(t *testing.T) {
	r := setupTest(t)
	p := seedProduct(t, "Set menu", 100, 10)

	w := doJSON(t, r, http.MethodPut, "/settings", gin.H{"default_tax_rate": 0.2})
	require.Equal(t, http.StatusOK, w.Code)

	// Fresh terminal opens its cart at the new rate
	w = doJSON(t, r, http.MethodPost, "/terminals/T9/cart/lines", gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	summary := cartSummary(t, r, "T9")
	assert.Equal(t, "20", summary["tax"])
	assert.Equal(t, "120", summary["total"])
}
