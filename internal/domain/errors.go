package domain

import "errors"

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidDelta    = errors.New("quantity delta must be +1 or -1")
	ErrCorruptCart     = errors.New("persisted cart is corrupt")
	ErrInvalidPrice    = errors.New("price is not valid")
	ErrProductNotFound = errors.New("product not found")
)
