package votes

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/lumen-studio/voting-backend/internal/models"
)

type staticCounters struct {
	locations []models.Location
	err       error
}

func (s staticCounters) ListLocations(_ context.Context) ([]models.Location, error) {
	return s.locations, s.err
}

func TestResultsPercentagesSumToHundred(t *testing.T) {
	agg := NewAggregator(staticCounters{locations: []models.Location{
		{ID: "maldives", DisplayName: "Maldives", VoteCount: 7},
		{ID: "kyoto", DisplayName: "Kyoto, Japan", VoteCount: 2},
		{ID: "iceland", DisplayName: "Iceland", VoteCount: 1},
	}})

	view, err := agg.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if view.TotalVotes != 10 {
		t.Errorf("TotalVotes = %d, want 10", view.TotalVotes)
	}
	var sum float64
	for _, res := range view.Locations {
		sum += res.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
	if view.Locations[0].ID != "maldives" || view.Locations[0].Percentage != 70 {
		t.Errorf("top result = %+v, want maldives at 70%%", view.Locations[0])
	}
}

func TestResultsZeroVotes(t *testing.T) {
	agg := NewAggregator(staticCounters{locations: []models.Location{
		{ID: "maldives", DisplayName: "Maldives"},
		{ID: "kyoto", DisplayName: "Kyoto, Japan"},
	}})

	view, err := agg.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if view.TotalVotes != 0 {
		t.Errorf("TotalVotes = %d, want 0", view.TotalVotes)
	}
	for _, res := range view.Locations {
		if res.Percentage != 0 {
			t.Errorf("%s percentage = %v, want 0 with no votes", res.ID, res.Percentage)
		}
	}
}

func TestResultsStableSortKeepsSourceOrderOnTies(t *testing.T) {
	agg := NewAggregator(staticCounters{locations: []models.Location{
		{ID: "maldives", VoteCount: 2},
		{ID: "santorini", VoteCount: 5},
		{ID: "kyoto", VoteCount: 2},
		{ID: "iceland", VoteCount: 2},
	}})

	view, err := agg.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, 0, len(view.Locations))
	for _, res := range view.Locations {
		got = append(got, res.ID)
	}
	want := []string{"santorini", "maldives", "kyoto", "iceland"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v (ties keep source order)", got, want)
	}
}

func TestResultsIdempotentReads(t *testing.T) {
	agg := NewAggregator(staticCounters{locations: []models.Location{
		{ID: "maldives", VoteCount: 3},
		{ID: "kyoto", VoteCount: 1},
	}})

	first, err := agg.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := agg.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two reads with no intervening writes returned different views")
	}
}

func TestResultsPropagatesSourceError(t *testing.T) {
	agg := NewAggregator(staticCounters{err: errors.New("store down")})
	if _, err := agg.Results(context.Background()); err == nil {
		t.Error("expected error from unreachable source")
	}
}
