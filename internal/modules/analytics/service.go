// Package analytics computes pipeline statistics for the dashboard summary
// cards: how many leads sit in each stage and how deal quality is distributed
// across the active pipeline.
package analytics

import (
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/avramidis/dealscout/internal/modules/leads"
	"github.com/avramidis/dealscout/internal/modules/scoring"
)

// QueueSource provides the current queue view. Implemented by the leads service.
type QueueSource interface {
	Queue() []leads.QueueItem
	Counts() map[leads.Status]int
}

// Distribution summarizes how a metric is spread across the active pipeline
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// PipelineStats is the GET /api/analytics/pipeline response
type PipelineStats struct {
	StatusCounts map[leads.Status]int `json:"status_counts"`
	ActiveLeads  int                  `json:"active_leads"`
	HoldScores   Distribution         `json:"hold_scores"`
	FlipScores   Distribution         `json:"flip_scores"`
	RentRatios   Distribution         `json:"rent_ratios"`
}

// Service computes pipeline analytics over the live queue state
type Service struct {
	source QueueSource
	log    zerolog.Logger
}

// NewService creates a new analytics service
func NewService(source QueueSource, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		log:    log.With().Str("service", "analytics").Logger(),
	}
}

// PipelineStats computes the current pipeline statistics
func (s *Service) PipelineStats() PipelineStats {
	items := s.source.Queue()

	holdScores := make([]float64, 0, len(items))
	flipScores := make([]float64, 0, len(items))
	rentRatios := make([]float64, 0, len(items))

	for _, item := range items {
		holdScores = append(holdScores, float64(item.HoldScore))
		flipScores = append(flipScores, float64(item.FlipScore))
		rentRatios = append(rentRatios, scoring.RentRatio(
			item.Lead.PotentialRent, item.Lead.OfferPrice, item.Lead.RehabCosts))
	}

	return PipelineStats{
		StatusCounts: s.source.Counts(),
		ActiveLeads:  len(items),
		HoldScores:   describe(holdScores),
		FlipScores:   describe(flipScores),
		RentRatios:   describe(rentRatios),
	}
}

// describe computes distribution stats for one metric. gonum's quantile
// requires sorted input; an empty series yields a zero distribution rather
// than NaNs so the JSON stays clean.
func describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}

	return Distribution{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: std,
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P50:    stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}
