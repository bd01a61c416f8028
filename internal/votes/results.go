package votes

import (
	"context"
	"sort"

	"github.com/lumen-studio/voting-backend/internal/models"
)

// CounterSource provides the location counter rows in their seeded order.
type CounterSource interface {
	ListLocations(ctx context.Context) ([]models.Location, error)
}

// Aggregator computes the results view from the location counters. Pure read;
// safe to call unboundedly often.
type Aggregator struct {
	source CounterSource
}

// NewAggregator creates an aggregator over source.
func NewAggregator(source CounterSource) *Aggregator {
	return &Aggregator{source: source}
}

// Results reads every counter and returns the derived view: per-location
// percentage of the total, sorted descending. The sort is stable, so ties
// keep the catalog order. All percentages are 0 when no votes exist.
func (a *Aggregator) Results(ctx context.Context) (*models.ResultsView, error) {
	locations, err := a.source.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, loc := range locations {
		total += loc.VoteCount
	}

	results := make([]models.LocationResult, 0, len(locations))
	for _, loc := range locations {
		res := models.LocationResult{
			ID:          loc.ID,
			DisplayName: loc.DisplayName,
			Count:       loc.VoteCount,
		}
		if total > 0 {
			res.Percentage = 100 * float64(loc.VoteCount) / float64(total)
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Percentage > results[j].Percentage
	})

	return &models.ResultsView{Locations: results, TotalVotes: total}, nil
}
