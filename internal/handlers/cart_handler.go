package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go-pos-terminal/internal/cart"
	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/models"
	"go-pos-terminal/internal/terminal"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Terminals is the session registry, wired up in main before the router starts.
var Terminals *terminal.Manager

// errLoyaltyRejected marks loyalty-tender validation failures so they map
// to a 400 rather than a server error.
var errLoyaltyRejected = errors.New("loyalty payment rejected")

func session(c *gin.Context) *terminal.Session {
	return Terminals.Session(c.Param("terminal"))
}

// cartError maps core mutation errors onto HTTP statuses.
func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidPrice),
		errors.Is(err, cart.ErrInvalidDiscount),
		errors.Is(err, cart.ErrInvalidAmount),
		errors.Is(err, cart.ErrInvalidMethod),
		errors.Is(err, errLoyaltyRejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrExceedsBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrNotSettled), errors.Is(err, cart.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// --- GET: Cart read model for rendering ---
func GetCart(c *gin.Context) {
	var summary cart.Summary
	_ = session(c).Do(func(ct *cart.Cart) error {
		summary = ct.Summary()
		return nil
	})
	c.JSON(http.StatusOK, summary)
}

type AddLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// --- POST: Put a product in the cart ---
func AddCartLine(c *gin.Context) {
	var input AddLineRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	var product models.Product
	if err := database.DB.Where("is_active = ?", true).First(&product, input.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	// Catalog state is frozen onto the line here; later catalog edits
	// do not touch carts already holding the product.
	snapshot := cart.ProductSnapshot{
		ID:         product.ID,
		Name:       product.Name,
		Price:      decimal.NewFromFloat(product.Price),
		Stock:      product.Stock,
		CategoryID: product.CategoryID,
	}

	var line *cart.Line
	err := session(c).Do(func(ct *cart.Cart) error {
		var err error
		line, err = ct.AddLine(snapshot, input.Quantity)
		return err
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

type UpdateLineRequest struct {
	Quantity  *int     `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

// --- PATCH: Change a line's quantity or override its price ---
func UpdateCartLine(c *gin.Context) {
	var input UpdateLineRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	lineID := c.Param("lineId")
	err := session(c).Do(func(ct *cart.Cart) error {
		if input.Quantity != nil {
			ct.SetQuantity(lineID, *input.Quantity)
		}
		if input.UnitPrice != nil {
			if err := ct.SetLinePrice(lineID, decimal.NewFromFloat(*input.UnitPrice)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cartError(c, err)
		return
	}
	GetCart(c)
}

// --- DELETE: Remove a line (no-op when already gone) ---
func RemoveCartLine(c *gin.Context) {
	lineID := c.Param("lineId")
	_ = session(c).Do(func(ct *cart.Cart) error {
		ct.RemoveLine(lineID)
		return nil
	})
	GetCart(c)
}

type DiscountRequest struct {
	Amount float64 `json:"amount"`
	Kind   string  `json:"kind" binding:"required,oneof=fixed percentage"`
	Reason string  `json:"reason"`
}

func (r DiscountRequest) toDiscount() cart.Discount {
	return cart.Discount{
		Amount: decimal.NewFromFloat(r.Amount),
		Kind:   cart.DiscountKind(r.Kind),
		Reason: r.Reason,
	}
}

// --- PUT: Replace one line's discount ---
func SetLineDiscount(c *gin.Context) {
	var input DiscountRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	lineID := c.Param("lineId")
	err := session(c).Do(func(ct *cart.Cart) error {
		return ct.SetLineDiscount(lineID, input.toDiscount())
	})
	if err != nil {
		cartError(c, err)
		return
	}
	GetCart(c)
}

// --- PUT: Replace the cart-level discount ---
func SetCartDiscount(c *gin.Context) {
	var input DiscountRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := session(c).Do(func(ct *cart.Cart) error {
		return ct.SetCartDiscount(input.toDiscount())
	})
	if err != nil {
		cartError(c, err)
		return
	}
	GetCart(c)
}

type SetCustomerRequest struct {
	CustomerID *uint `json:"customer_id"` // null detaches, back to walk-in
}

// --- PUT: Attach or detach the customer ---
func SetCartCustomer(c *gin.Context) {
	var input SetCustomerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var ref *cart.CustomerRef
	if input.CustomerID != nil {
		var customer models.Customer
		if err := database.DB.First(&customer, *input.CustomerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		ref = &cart.CustomerRef{ID: customer.ID, Name: customer.Name, LoyaltyPoints: customer.LoyaltyPoints}
	}

	_ = session(c).Do(func(ct *cart.Cart) error {
		ct.SetCustomer(ref)
		return nil
	})
	GetCart(c)
}

type SetTableRequest struct {
	TableID *uint `json:"table_id"` // null means takeaway
}

// --- PUT: Assign or clear the table ---
func SetCartTable(c *gin.Context) {
	var input SetTableRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.TableID != nil {
		var table models.Table
		if err := database.DB.First(&table, *input.TableID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
			return
		}
	}

	_ = session(c).Do(func(ct *cart.Cart) error {
		ct.SetTable(input.TableID)
		return nil
	})
	GetCart(c)
}

type PaymentRequest struct {
	Method    string  `json:"method" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Reference string  `json:"reference"`
}

// --- POST: Record a tender against the balance ---
func AddCartPayment(c *gin.Context) {
	var input PaymentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	method := cart.Method(input.Method)
	amount := decimal.NewFromFloat(input.Amount)

	var payment *cart.Payment
	err := session(c).Do(func(ct *cart.Cart) error {
		if method == cart.MethodLoyalty {
			if err := checkLoyaltyRedemption(ct, amount); err != nil {
				return err
			}
		}
		var err error
		payment, err = ct.AddPayment(method, amount, input.Reference)
		return err
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// checkLoyaltyRedemption verifies the attached customer holds enough points
// to cover a loyalty tender at the store's points-to-currency rate.
func checkLoyaltyRedemption(ct *cart.Cart, amount decimal.Decimal) error {
	customer := ct.Customer()
	if customer == nil {
		return fmt.Errorf("%w: requires a customer on the sale", errLoyaltyRejected)
	}
	settings, err := database.GetSettings()
	if err != nil {
		return err
	}
	if !settings.LoyaltyActive || settings.UnitsPerPoint <= 0 {
		return fmt.Errorf("%w: redemption is disabled", errLoyaltyRejected)
	}
	pointsNeeded := amount.Div(decimal.NewFromFloat(settings.UnitsPerPoint)).Ceil().IntPart()
	if pointsNeeded < int64(settings.MinRedemption) {
		return fmt.Errorf("%w: below the %d point minimum", errLoyaltyRejected, settings.MinRedemption)
	}
	if pointsNeeded > int64(customer.LoyaltyPoints) {
		return fmt.Errorf("%w: customer has %d points, needs %d", errLoyaltyRejected, customer.LoyaltyPoints, pointsNeeded)
	}
	return nil
}

// --- DELETE: Remove a tender (no-op when already gone) ---
func RemoveCartPayment(c *gin.Context) {
	paymentID := c.Param("paymentId")
	_ = session(c).Do(func(ct *cart.Cart) error {
		ct.RemovePayment(paymentID)
		return nil
	})
	GetCart(c)
}

// --- POST: Abandon the sale ---
func ClearCart(c *gin.Context) {
	_ = session(c).Do(func(ct *cart.Cart) error {
		ct.Clear()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// --- POST: Finalize the sale ---
// The whole write happens in one database transaction: stock is locked and
// deducted per line, the order with its items and payments is inserted,
// and loyalty balances move. The in-memory cart clears only after commit,
// so a failed checkout leaves the sale exactly as it was.
func Checkout(c *gin.Context) {
	sess := session(c)
	userID := c.MustGet("userID").(uint)

	var order models.Order
	err := sess.Do(func(ct *cart.Cart) error {
		receipt, err := ct.Receipt()
		if err != nil {
			return err
		}

		tx := database.DB.Begin()

		for _, line := range receipt.Lines {
			var product models.Product

			// Lock the row to prevent concurrent terminals overselling
			if err := database.ForUpdate(tx).First(&product, line.Product.ID).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("product %d not found", line.Product.ID)
			}

			if product.Stock < line.Quantity {
				tx.Rollback()
				return fmt.Errorf("insufficient stock for %s", product.Name)
			}

			product.Stock -= line.Quantity
			if err := tx.Save(&product).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to update stock")
			}
		}

		order = orderFromReceipt(sess.ID, userID, receipt)
		if err := tx.Create(&order).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create order record")
		}

		if receipt.Customer != nil {
			if err := settleLoyalty(tx, receipt); err != nil {
				tx.Rollback()
				return err
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit sale")
		}

		ct.Clear()
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotSettled), errors.Is(err, cart.ErrEmptyCart):
			cartError(c, err)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Sale completed",
		"order_id": order.ID,
		"total":    order.Total,
	})
}

func orderFromReceipt(terminalID string, cashierID uint, receipt *cart.Receipt) models.Order {
	order := models.Order{
		TerminalID:    terminalID,
		CashierID:     cashierID,
		TableID:       receipt.TableID,
		Subtotal:      receipt.Subtotal.InexactFloat64(),
		DiscountTotal: receipt.DiscountTotal.InexactFloat64(),
		TaxTotal:      receipt.Tax.InexactFloat64(),
		Total:         receipt.Total.InexactFloat64(),
		Status:        "completed",
		CreatedAt:     receipt.CompletedAt,
	}
	if receipt.Customer != nil {
		id := receipt.Customer.ID
		order.CustomerID = &id
	}
	for _, line := range receipt.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.InexactFloat64(),
			Discount:  line.DiscountAmount.InexactFloat64(),
			LineTotal: line.LineTotal.InexactFloat64(),
		})
	}
	for _, p := range receipt.Payments {
		order.Payments = append(order.Payments, models.OrderPayment{
			Method:      string(p.Method),
			Amount:      p.Amount.InexactFloat64(),
			Applied:     p.Applied.InexactFloat64(),
			ChangeGiven: p.ChangeGiven.InexactFloat64(),
			Reference:   p.Reference,
		})
	}
	return order
}

// settleLoyalty moves points for the sale: redeemed points come off the
// balance first, then points earned on the total are added.
func settleLoyalty(tx *gorm.DB, receipt *cart.Receipt) error {
	var customer models.Customer
	if err := database.ForUpdate(tx).First(&customer, receipt.Customer.ID).Error; err != nil {
		return fmt.Errorf("customer %d not found", receipt.Customer.ID)
	}

	// Read through tx: the checkout transaction already holds the write lock.
	var settings models.Settings
	if err := tx.First(&settings).Error; err != nil {
		return err
	}

	if settings.LoyaltyActive && settings.UnitsPerPoint > 0 {
		for _, p := range receipt.Payments {
			if p.Method == cart.MethodLoyalty {
				redeemed := p.Applied.Div(decimal.NewFromFloat(settings.UnitsPerPoint)).Ceil().IntPart()
				customer.LoyaltyPoints -= int(redeemed)
			}
		}
		earned := receipt.Total.Mul(decimal.NewFromFloat(settings.PointsPerUnit)).Floor().IntPart()
		customer.LoyaltyPoints += int(earned)
		if customer.LoyaltyPoints < 0 {
			customer.LoyaltyPoints = 0
		}
	}

	customer.TotalSpent += receipt.Total.InexactFloat64()
	now := receipt.CompletedAt
	customer.LastVisit = &now

	return tx.Save(&customer).Error
}
