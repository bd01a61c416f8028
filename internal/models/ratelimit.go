package models

import "time"

// RateLimitRecord tracks requests from one identity token within the current
// fixed window. Count only grows while the window is open; once WindowResetAt
// passes the record is replaced wholesale with count=1 and a new window.
type RateLimitRecord struct {
	Token         string    `json:"token"`
	Count         int       `json:"count"`
	WindowResetAt time.Time `json:"window_reset_at"`
}
