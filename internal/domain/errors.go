package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product is unknown to USDA or to the product store
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidGTIN is returned when a product key is not an 8-14 digit GTIN
	ErrInvalidGTIN = errors.New("invalid GTIN")

	// ErrRateLimited is returned when a client or the USDA quota is exhausted
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUSDAAPIFailure is returned when USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")

	// ErrInvalidCapacity is returned when a bounded store is constructed with capacity below one
	ErrInvalidCapacity = errors.New("capacity must be at least 1")

	// ErrStoreClosed is returned when the durable product store is used after Close
	ErrStoreClosed = errors.New("product store closed")
)
