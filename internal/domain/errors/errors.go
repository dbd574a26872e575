package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidPayment     = errors.New("invalid payment")
	ErrInvalidOrderNumber = errors.New("invalid order number")
	ErrConfigInvalid      = errors.New("config invalid for network")
	ErrCalculationInvalid = errors.New("calculation invalid")
	ErrOrderNotUpdatable  = errors.New("order cannot be updated")
	ErrInvalidAPIKey      = errors.New("invalid api key")
)
