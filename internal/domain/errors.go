package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a conflicting entity already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden indicates the principal lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// NetworkError reports a transport or HTTP failure talking to the backend.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StockError reports a product that is missing or short on stock.
type StockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
	Missing   bool
}

func (e *StockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Product not found for _id: %s", e.ProductID)
	}
	return fmt.Sprintf("Insufficient stock for %s (available %d, requested %d)", e.Name, e.Available, e.Requested)
}

// ValidationError reports input rejected before any backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// GatewayError reports a failure returned by the payment collaborator.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}
