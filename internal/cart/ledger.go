package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is how a payment was tendered.
type Method string

const (
	MethodCash    Method = "cash"
	MethodCard    Method = "card"
	MethodDigital Method = "digital"
	MethodLoyalty Method = "loyalty"
)

// Valid reports whether m is one of the accepted tender methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodDigital, MethodLoyalty:
		return true
	}
	return false
}

// Payment is one tender recorded against the sale. Amount is what the
// customer handed over; Applied is the part that reduced the balance.
// For cash the difference is returned as ChangeGiven; other methods
// never tender more than the balance, so Applied always equals Amount.
type Payment struct {
	ID          string          `json:"id"`
	Method      Method          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Applied     decimal.Decimal `json:"applied"`
	ChangeGiven decimal.Decimal `json:"change_given"`
	Reference   string          `json:"reference,omitempty"`
}

// Ledger holds the payments tendered against one cart's total. The zero
// value is ready to use.
type Ledger struct {
	payments []*Payment
}

// add records a tender against the given outstanding balance.
func (l *Ledger) add(method Method, amount, balance decimal.Decimal, reference string) (*Payment, error) {
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	applied := amount
	change := decimal.Zero
	if amount.GreaterThan(balance) {
		if method != MethodCash {
			return nil, ErrExceedsBalance
		}
		applied = balance
		change = amount.Sub(balance)
	}
	p := &Payment{
		ID:          uuid.NewString(),
		Method:      method,
		Amount:      amount,
		Applied:     applied,
		ChangeGiven: change,
		Reference:   reference,
	}
	l.payments = append(l.payments, p)
	return p, nil
}

// remove deletes a payment; absent ids are a no-op.
func (l *Ledger) remove(paymentID string) {
	for i, p := range l.payments {
		if p.ID == paymentID {
			l.payments = append(l.payments[:i], l.payments[i+1:]...)
			return
		}
	}
}

func (l *Ledger) clear() {
	l.payments = nil
}

// TotalPaid sums the applied portion of every payment.
func (l *Ledger) TotalPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range l.payments {
		paid = paid.Add(p.Applied)
	}
	return paid
}

// ChangeGiven sums the change handed back across all payments.
func (l *Ledger) ChangeGiven() decimal.Decimal {
	change := decimal.Zero
	for _, p := range l.payments {
		change = change.Add(p.ChangeGiven)
	}
	return change
}

// Payments returns the tenders in insertion order.
func (l *Ledger) Payments() []*Payment { return l.payments }

// AddPayment records a tender against the current balance. Cash tendered
// above the balance has the excess recorded as change on that payment;
// card, digital and loyalty tenders above the balance are rejected.
func (c *Cart) AddPayment(method Method, amount decimal.Decimal, reference string) (*Payment, error) {
	return c.ledger.add(method, amount, c.Balance(), reference)
}

// RemovePayment deletes a tender; absent ids are a no-op.
func (c *Cart) RemovePayment(paymentID string) {
	c.ledger.remove(paymentID)
}

// Payments returns the recorded tenders in insertion order.
func (c *Cart) Payments() []*Payment {
	return c.ledger.Payments()
}

// TotalPaid is the amount applied toward the total so far.
func (c *Cart) TotalPaid() decimal.Decimal {
	return c.ledger.TotalPaid()
}

// Balance is the amount still owed, floored at zero.
func (c *Cart) Balance() decimal.Decimal {
	balance := c.Total().Sub(c.TotalPaid())
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// ChangeDue is the cash owed back to the customer. It always equals the
// sum of per-payment ChangeGiven because applied amounts never exceed the
// balance they were tendered against.
func (c *Cart) ChangeDue() decimal.Decimal {
	return c.ledger.ChangeGiven()
}

// IsSettled reports whether the balance has reached zero.
func (c *Cart) IsSettled() bool {
	return c.Balance().IsZero()
}
