package models

// ToggleWatchlistRequest is the body of POST /api/watchlist/toggle.
type ToggleWatchlistRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=12"`
}
