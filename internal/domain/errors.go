package domain

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidURL             = errors.New("invalid video url")
	ErrRateLimited            = errors.New("rate limited")
	ErrAllStrategiesExhausted = errors.New("all extraction strategies exhausted")
	ErrNoFormatsAvailable     = errors.New("no downloadable formats available")
	ErrVariantNotFound        = errors.New("variant not found")
	ErrNotFound               = errors.New("not found")
)
