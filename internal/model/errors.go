package model

import "errors"

// Common errors used across the application
var (
	// Registry errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerDisconnected = errors.New("player has no live connection")

	// Authorization errors
	ErrIdentityLookupFailed = errors.New("identity lookup failed")
	ErrAllowListUnavailable = errors.New("allow-list unavailable")
	ErrOperatorNotFound     = errors.New("operator not found")

	// Remote command errors
	ErrInvalidCommand        = errors.New("invalid command")
	ErrCommandDeliveryFailed = errors.New("command delivery failed")

	// Time record errors
	ErrTimeNotFound  = errors.New("time not found")
	ErrTrailRequired = errors.New("trail name is required")

	// Connection errors
	ErrInvalidHandshake = errors.New("invalid handshake")
)
