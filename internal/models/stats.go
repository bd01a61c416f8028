package models

import "time"

// DailyLocationStat is one day's accepted-vote count for one location,
// maintained asynchronously by the vote-event worker.
type DailyLocationStat struct {
	Day        time.Time `json:"day"`
	LocationID string    `json:"location_id"`
	Votes      int64     `json:"votes"`
}
