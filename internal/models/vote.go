package models

import "time"

// VoteRecord is one accepted vote, keyed by the voter's identity token.
// At most one record per token exists, ever; rows are never updated or deleted.
type VoteRecord struct {
	VoterHash  string    `json:"voter_hash"`
	LocationID string    `json:"location_id"`
	VotedAt    time.Time `json:"voted_at"`
}
