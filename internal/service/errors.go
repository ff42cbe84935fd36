package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation")    // 400
	ErrEmptyCart    = errors.New("cart is empty") // 400
	ErrUnauthorized = errors.New("unauthorized")  // 401
	ErrForbidden    = errors.New("forbidden")     // 403
	ErrNotFound     = errors.New("not found")     // 404
	ErrConflict     = errors.New("conflict")      // 409
)

var (
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("item %w in cart", ErrNotFound)
)
