package health

import (
	"context"
	"errors"
	"testing"
)

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator(
		NewCheckerFunc("store", func(context.Context) Result { return Healthy("ok") }),
		NewCheckerFunc("remote", func(context.Context) Result { return Degraded("slow") }),
	)
	agg.Add(NewCheckerFunc("jwks", func(context.Context) Result {
		return Unhealthy("unreachable", errors.New("timeout"))
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("CheckAll() returned %d results, want 3", len(results))
	}
	if results["store"].Status != StatusHealthy {
		t.Errorf("store status = %v, want healthy", results["store"].Status)
	}
	if results["jwks"].Status != StatusUnhealthy {
		t.Errorf("jwks status = %v, want unhealthy", results["jwks"].Status)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{
			name:    "empty is healthy",
			results: map[string]Result{},
			want:    StatusHealthy,
		},
		{
			name: "all healthy",
			results: map[string]Result{
				"a": {Status: StatusHealthy},
				"b": {Status: StatusHealthy},
			},
			want: StatusHealthy,
		},
		{
			name: "worst status wins",
			results: map[string]Result{
				"a": {Status: StatusHealthy},
				"b": {Status: StatusDegraded},
			},
			want: StatusDegraded,
		},
		{
			name: "unhealthy dominates",
			results: map[string]Result{
				"a": {Status: StatusDegraded},
				"b": {Status: StatusUnhealthy},
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
