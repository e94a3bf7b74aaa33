package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLine is a finalized line with its money values resolved to two
// decimal places.
type ReceiptLine struct {
	Product        ProductSnapshot `json:"product"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountReason string          `json:"discount_reason,omitempty"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// Receipt is the immutable snapshot of a settled sale, taken at finalize
// time. The persistence layer writes it out; the cart that produced it is
// cleared and reused for the next sale.
type Receipt struct {
	Lines         []ReceiptLine   `json:"lines"`
	Customer      *CustomerRef    `json:"customer,omitempty"`
	TableID       *uint           `json:"table_id,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Payments      []Payment       `json:"payments"`
	ChangeDue     decimal.Decimal `json:"change_due"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// Receipt snapshots the cart for persistence. It fails with ErrNotSettled
// while any balance remains and with ErrEmptyCart for a cart with no lines.
// The cart is left untouched so the caller can clear it only after the
// snapshot has been durably stored.
func (c *Cart) Receipt() (*Receipt, error) {
	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}
	if !c.IsSettled() {
		return nil, ErrNotSettled
	}

	r := &Receipt{
		TableID:       c.tableID,
		Subtotal:      c.Subtotal().Round(2),
		DiscountTotal: c.CartDiscountAmount().Round(2),
		Tax:           c.Tax().Round(2),
		Total:         c.Total().Round(2),
		ChangeDue:     c.ChangeDue().Round(2),
		CompletedAt:   time.Now(),
	}
	if c.customer != nil {
		cust := *c.customer
		r.Customer = &cust
	}
	for _, line := range c.lines {
		r.Lines = append(r.Lines, ReceiptLine{
			Product:        line.Product,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice.Round(2),
			DiscountAmount: line.DiscountAmount().Round(2),
			DiscountReason: line.Discount.Reason,
			LineTotal:      line.Total().Sub(line.DiscountAmount()).Round(2),
		})
	}
	for _, p := range c.ledger.Payments() {
		r.Payments = append(r.Payments, *p)
	}
	return r, nil
}

// Finalize snapshots a settled sale and clears the cart and ledger in one
// step. Either both are cleared or, on error, neither is touched.
func (c *Cart) Finalize() (*Receipt, error) {
	receipt, err := c.Receipt()
	if err != nil {
		return nil, err
	}
	c.Clear()
	return receipt, nil
}

// Summary is the cart read model handed to the rendering layer. All money
// values are rounded to two decimal places here and nowhere earlier.
type Summary struct {
	Lines              []*Line         `json:"lines"`
	Customer           *CustomerRef    `json:"customer,omitempty"`
	TableID            *uint           `json:"table_id,omitempty"`
	CartDiscount       Discount        `json:"cart_discount"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	CartDiscountAmount decimal.Decimal `json:"cart_discount_amount"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
	Payments           []*Payment      `json:"payments"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	Balance            decimal.Decimal `json:"balance"`
	ChangeDue          decimal.Decimal `json:"change_due"`
	IsSettled          bool            `json:"is_settled"`
}

// Summary computes the full read model from current state.
func (c *Cart) Summary() Summary {
	return Summary{
		Lines:              c.lines,
		Customer:           c.customer,
		TableID:            c.tableID,
		CartDiscount:       c.discount,
		Subtotal:           c.Subtotal().Round(2),
		CartDiscountAmount: c.CartDiscountAmount().Round(2),
		TaxRate:            c.taxRate,
		Tax:                c.Tax().Round(2),
		Total:              c.Total().Round(2),
		Payments:           c.ledger.Payments(),
		TotalPaid:          c.TotalPaid().Round(2),
		Balance:            c.Balance().Round(2),
		ChangeDue:          c.ChangeDue().Round(2),
		IsSettled:          c.IsSettled(),
	}
}
