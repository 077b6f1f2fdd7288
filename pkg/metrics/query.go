package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// FlowTotals represents aggregated intake flow metrics.
type FlowTotals struct {
	Started       int64            `json:"started"`
	Finalized     map[string]int64 `json:"finalized_by_outcome"`
	RejectedTotal int64            `json:"rejected_events"`
}

// QueryService queries aggregated intake metrics from a Prometheus server
// scraping this process. It backs the operator status surface; the intake
// flow itself never depends on it.
type QueryService struct {
	client   api.Client
	queryAPI v1.API
}

// NewQueryService creates a metrics query service for the given Prometheus
// base URL.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &QueryService{
		client:   client,
		queryAPI: v1.NewAPI(client),
	}, nil
}

// GetFlowTotals retrieves aggregated flow counters.
func (q *QueryService) GetFlowTotals(ctx context.Context) (*FlowTotals, error) {
	totals := &FlowTotals{
		Finalized: make(map[string]int64),
	}

	startedQuery := fmt.Sprintf(`sum(intake_transitions_total{from=%q})`, "NONE")
	startedResult, _, err := q.queryAPI.Query(ctx, startedQuery, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query started flows: %w", err)
	}
	if vector, ok := startedResult.(model.Vector); ok && len(vector) > 0 {
		totals.Started = int64(vector[0].Value)
	}

	finalizeResult, _, err := q.queryAPI.Query(ctx, `sum by (outcome) (intake_finalize_total)`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query finalizations: %w", err)
	}
	if vector, ok := finalizeResult.(model.Vector); ok {
		for _, sample := range vector {
			if outcome, ok := sample.Metric["outcome"]; ok {
				totals.Finalized[string(outcome)] = int64(sample.Value)
			}
		}
	}

	rejectedResult, _, err := q.queryAPI.Query(ctx, `sum(intake_rejected_events_total)`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query rejected events: %w", err)
	}
	if vector, ok := rejectedResult.(model.Vector); ok && len(vector) > 0 {
		totals.RejectedTotal = int64(vector[0].Value)
	}

	return totals, nil
}
