package models

import "errors"

var (
	// ErrNoData means the provider responded but returned nothing usable.
	// Callers treat it as an empty, non-exceptional outcome.
	ErrNoData = errors.New("no data")

	// ErrUpstream means the provider call itself failed (network, non-2xx).
	// Read paths degrade to "no data"; it is never surfaced as a 5xx.
	ErrUpstream = errors.New("upstream unavailable")
)
