package models

// Location is a destination open for voting, with its running tally.
// One row per valid location, seeded before the poll opens.
type Location struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	VoteCount   int64  `json:"voteCount"`
	Position    int    `json:"-"`
}

// LocationResult is one entry of the computed results view.
type LocationResult struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Count       int64   `json:"count"`
	Percentage  float64 `json:"percentage"`
}

// ResultsView is the derived snapshot returned to clients: all locations with
// percentages, sorted descending. Recomputed on every read, never persisted.
type ResultsView struct {
	Locations  []LocationResult `json:"locations"`
	TotalVotes int64            `json:"totalVotes"`
}
