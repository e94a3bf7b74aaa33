package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountKind selects how a discount magnitude is interpreted.
type DiscountKind string

const (
	DiscountFixed      DiscountKind = "fixed"
	DiscountPercentage DiscountKind = "percentage"
)

var oneHundred = decimal.NewFromInt(100)

// Discount is a line-level or cart-level price reduction.
// Amount is a currency value for "fixed" and a percentage for "percentage".
type Discount struct {
	Amount decimal.Decimal `json:"amount"`
	Kind   DiscountKind    `json:"kind"`
	Reason string          `json:"reason,omitempty"`
}

// IsZero reports whether the discount reduces nothing.
func (d Discount) IsZero() bool {
	return d.Amount.IsZero() || d.Kind == ""
}

// ProductSnapshot is the catalog state of a product at the moment it was
// added to the cart. It is never re-fetched while the line exists.
type ProductSnapshot struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CategoryID uint            `json:"category_id"`
}

// CustomerRef identifies the customer attached to the sale. Nil means walk-in.
type CustomerRef struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

// Line is one product entry in the cart. UnitPrice starts at the catalog
// price but can be overridden per line without touching the catalog.
type Line struct {
	ID        string          `json:"id"`
	Product   ProductSnapshot `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  Discount        `json:"discount"`
}

// Total is the line's pre-discount value: unit price times quantity.
func (l *Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DiscountAmount is the currency value the line discount removes,
// clamped to [0, line total].
func (l *Line) DiscountAmount() decimal.Decimal {
	total := l.Total()
	amount := l.Discount.Amount
	if l.Discount.Kind == DiscountPercentage {
		amount = total.Mul(l.Discount.Amount).Div(oneHundred)
	}
	return clamp(amount, total)
}

// Cart is one in-progress sale on one terminal. It owns its lines and its
// payment ledger; Clear and Finalize reset both together. Cart is not
// safe for concurrent use; the session layer serializes access.
type Cart struct {
	lines    []*Line
	customer *CustomerRef
	tableID  *uint
	discount Discount
	taxRate  decimal.Decimal
	ledger   Ledger
}

// New returns an empty cart. taxRate is a fraction (0.10 for 10%),
// applied to the post-discount subtotal.
func New(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate}
}

// AddLine puts a product in the cart. Adding a product that is already
// present increments the existing line instead of creating a second one.
func (c *Cart) AddLine(product ProductSnapshot, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	for _, line := range c.lines {
		if line.Product.ID == product.ID {
			line.Quantity += quantity
			return line, nil
		}
	}
	line := &Line{
		ID:        uuid.NewString(),
		Product:   product,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// RemoveLine deletes a line. Removing an id that is not present is a no-op.
func (c *Cart) RemoveLine(lineID string) {
	for i, line := range c.lines {
		if line.ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity updates a line's quantity. A quantity of zero or less removes
// the line; a line never exists with quantity below one.
func (c *Cart) SetQuantity(lineID string, quantity int) {
	if quantity <= 0 {
		c.RemoveLine(lineID)
		return
	}
	if line := c.findLine(lineID); line != nil {
		line.Quantity = quantity
	}
}

// SetLinePrice overrides one line's unit price. The catalog is untouched.
func (c *Cart) SetLinePrice(lineID string, price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	if line := c.findLine(lineID); line != nil {
		line.UnitPrice = price
	}
	return nil
}

// SetLineDiscount replaces a line's discount wholesale.
func (c *Cart) SetLineDiscount(lineID string, d Discount) error {
	if d.Amount.IsNegative() {
		return ErrInvalidDiscount
	}
	if line := c.findLine(lineID); line != nil {
		line.Discount = d
	}
	return nil
}

// SetCustomer attaches a customer to the sale, or nil for walk-in.
func (c *Cart) SetCustomer(customer *CustomerRef) {
	c.customer = customer
}

// SetTable assigns the sale to a table, or nil for takeaway.
func (c *Cart) SetTable(tableID *uint) {
	c.tableID = tableID
}

// SetCartDiscount replaces the cart-level discount wholesale.
func (c *Cart) SetCartDiscount(d Discount) error {
	if d.Amount.IsNegative() {
		return ErrInvalidDiscount
	}
	c.discount = d
	return nil
}

// Clear resets lines, customer, table, discount and payments in one step,
// after a completed or abandoned sale.
func (c *Cart) Clear() {
	c.lines = nil
	c.customer = nil
	c.tableID = nil
	c.discount = Discount{}
	c.ledger.clear()
}

// Lines returns the lines in insertion order.
func (c *Cart) Lines() []*Line { return c.lines }

// Customer returns the attached customer, nil for walk-in.
func (c *Cart) Customer() *CustomerRef { return c.customer }

// TableID returns the assigned table, nil for takeaway.
func (c *Cart) TableID() *uint { return c.tableID }

// CartDiscount returns the cart-level discount.
func (c *Cart) CartDiscount() Discount { return c.discount }

// TaxRate returns the tax fraction this cart was opened with.
func (c *Cart) TaxRate() decimal.Decimal { return c.taxRate }

// Subtotal sums every line's total minus its line discount.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.Total().Sub(line.DiscountAmount()))
	}
	return subtotal
}

// CartDiscountAmount is the currency value the cart-level discount removes
// from the subtotal, clamped to [0, subtotal]. Line discounts have already
// been taken out of the subtotal at this point.
func (c *Cart) CartDiscountAmount() decimal.Decimal {
	subtotal := c.Subtotal()
	amount := c.discount.Amount
	if c.discount.Kind == DiscountPercentage {
		amount = subtotal.Mul(c.discount.Amount).Div(oneHundred)
	}
	return clamp(amount, subtotal)
}

// TaxableAmount is the subtotal after the cart-level discount. The clamp in
// CartDiscountAmount keeps it non-negative.
func (c *Cart) TaxableAmount() decimal.Decimal {
	return c.Subtotal().Sub(c.CartDiscountAmount())
}

// Tax applies the rate to the discounted amount, never to the raw subtotal.
func (c *Cart) Tax() decimal.Decimal {
	return c.TaxableAmount().Mul(c.taxRate)
}

// Total is the amount the customer owes.
func (c *Cart) Total() decimal.Decimal {
	return c.TaxableAmount().Add(c.Tax())
}

func (c *Cart) findLine(lineID string) *Line {
	for _, line := range c.lines {
		if line.ID == lineID {
			return line
		}
	}
	return nil
}

// clamp bounds v to [0, max].
func clamp(v, max decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(max) {
		return max
	}
	return v
}
