package cart

import "errors"

// Mutation-boundary errors. A rejected mutation leaves the cart untouched.
var (
	ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("cart: price must not be negative")
	ErrInvalidDiscount = errors.New("cart: discount amount must not be negative")
	ErrInvalidAmount   = errors.New("cart: payment amount must be positive")
	ErrInvalidMethod   = errors.New("cart: unknown payment method")
	ErrExceedsBalance  = errors.New("cart: non-cash payment exceeds outstanding balance")
	ErrNotSettled      = errors.New("cart: balance is not settled")
	ErrEmptyCart       = errors.New("cart: no lines to finalize")
)
