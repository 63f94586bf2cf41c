// Package scoring computes the Nova Score, a bounded 0 to 1000 composite of a
// partner's behavioral metrics and review sentiment.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/sentiment"
)

// Default normalization caps.
const (
	defaultVolumeCap   = 200
	defaultEarningsCap = 3000
	defaultLeavesCap   = 10
	maxRiskOrdinal     = 3
)

// Weights are the maximum contribution of each term. Penalty weights are
// positive and subtracted.
type Weights struct {
	Sentiment    float64 `koanf:"sentiment" json:"sentiment"`
	Punctuality  float64 `koanf:"punctuality" json:"punctuality"`
	Volume       float64 `koanf:"volume" json:"volume"`
	Earnings     float64 `koanf:"earnings" json:"earnings"`
	Risk         float64 `koanf:"risk" json:"risk"`
	Cancellation float64 `koanf:"cancellation" json:"cancellation"`
	Vehicle      float64 `koanf:"vehicle" json:"vehicle"`
	Leaves       float64 `koanf:"leaves" json:"leaves"`
	Rating       float64 `koanf:"rating" json:"rating"`
}

// DefaultWeights returns the production weighting. Its theoretical raw range
// is [-370, 920].
func DefaultWeights() Weights {
	return Weights{
		Sentiment:    300,
		Punctuality:  250,
		Volume:       100,
		Earnings:     150,
		Risk:         200,
		Cancellation: 150,
		Vehicle:      50,
		Leaves:       20,
		Rating:       70,
	}
}

// Range returns the lowest and highest raw sums the weights can produce.
func (w Weights) Range() (lo, hi float64) {
	lo = -(w.Risk + w.Cancellation + w.Leaves)
	hi = w.Sentiment + w.Punctuality + w.Volume + w.Earnings + w.Vehicle + w.Rating
	return lo, hi
}

// Valid reports whether every weight is a finite non-negative number and the
// range is not empty.
func (w Weights) Valid() bool {
	for _, v := range []float64{w.Sentiment, w.Punctuality, w.Volume, w.Earnings, w.Risk,
		w.Cancellation, w.Vehicle, w.Leaves, w.Rating} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	lo, hi := w.Range()
	return hi > lo
}

// Option applies a configuration option to the NovaScorer.
type Option func(*NovaScorer)

// WithWeights overrides the term weights. Negative weights or a weighting
// with an empty range are ignored.
func WithWeights(w Weights) Option {
	return func(s *NovaScorer) {
		if w.Valid() {
			s.weights = w
		}
	}
}

// WithAnalyzer sets the sentiment analyzer used for review text.
func WithAnalyzer(a *sentiment.Analyzer) Option {
	return func(s *NovaScorer) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// Input wraps the partner snapshot to score.
type Input struct {
	Partner model.Partner
}

// Result contains the computed score for a partner.
type Result struct {
	PartnerID string
	Score     int
	Breakdown Breakdown
}

// Scorer computes a score from an input.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// Breakdown is every weighted term of a score plus the sums they produce.
type Breakdown struct {
	AvgSentiment float64 `json:"avgSentiment"`
	RiskOrdinal  int     `json:"riskOrdinal"`
	AvgEarnings  float64 `json:"avgMonthlyEarnings"`

	Sentiment           float64 `json:"sentiment"`
	Punctuality         float64 `json:"punctuality"`
	Volume              float64 `json:"volume"`
	Earnings            float64 `json:"earnings"`
	RiskPenalty         float64 `json:"riskPenalty"`
	CancellationPenalty float64 `json:"cancellationPenalty"`
	Vehicle             float64 `json:"vehicle"`
	LeavePenalty        float64 `json:"leavePenalty"`
	Rating              float64 `json:"rating"`

	Raw    float64 `json:"raw"`
	Scaled float64 `json:"scaled"`
	Score  int     `json:"score"`
}

// NovaScorer implements Scorer with the weighted-sum model. It is pure and
// safe for concurrent use.
type NovaScorer struct {
	weights  Weights
	analyzer *sentiment.Analyzer
}

// NewNovaScorer creates a scorer with the default weights and lexicon.
func NewNovaScorer(opts ...Option) *NovaScorer {
	s := &NovaScorer{
		weights:  DefaultWeights(),
		analyzer: sentiment.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights in use.
func (s *NovaScorer) Weights() Weights {
	return s.weights
}

// Score computes the Nova Score for in.Partner.
func (s *NovaScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	b := s.Breakdown(in.Partner)
	return Result{PartnerID: in.Partner.ID, Score: b.Score, Breakdown: b}, nil
}

// Compute returns the Nova Score of p.
func (s *NovaScorer) Compute(p model.Partner) int {
	return s.Breakdown(p).Score
}

// Breakdown scores p and returns every intermediate term.
func (s *NovaScorer) Breakdown(p model.Partner) Breakdown {
	w := s.weights
	b := Breakdown{
		AvgSentiment: s.avgSentiment(p),
		RiskOrdinal:  riskOrdinal(p.RiskLevel),
		AvgEarnings:  mean(p.EarningsHistory),
	}

	// Every ratio is clamped to [0,1] before weighting so that malformed
	// input cannot push a term past its weight.
	b.Sentiment = unit(b.AvgSentiment/sentiment.MaxScore) * w.Sentiment
	b.Punctuality = unit(p.OnTimePickupRate) * w.Punctuality
	b.Volume = unit(float64(p.TripVolume)/defaultVolumeCap) * w.Volume
	b.Earnings = unit(b.AvgEarnings/defaultEarningsCap) * w.Earnings
	b.RiskPenalty = -(float64(b.RiskOrdinal) / maxRiskOrdinal) * w.Risk
	b.CancellationPenalty = -unit(p.CancellationRate) * w.Cancellation
	b.Vehicle = unit(float64(p.VehicleCondition)/model.MaxVehicleScore) * w.Vehicle
	b.LeavePenalty = -unit(float64(p.LeavesTaken)/defaultLeavesCap) * w.Leaves
	b.Rating = unit(p.AvgRating/model.MaxRating) * w.Rating

	b.Raw = b.Sentiment + b.Punctuality + b.Volume + b.Earnings + b.RiskPenalty +
		b.CancellationPenalty + b.Vehicle + b.LeavePenalty + b.Rating

	lo, hi := w.Range()
	b.Scaled = (b.Raw - lo) / (hi - lo) * model.MaxNovaScore
	b.Score = int(math.Round(model.Clamp(b.Scaled, 0, model.MaxNovaScore)))
	return b
}

// avgSentiment prefers review text, then the stored overall score, then
// the neutral midpoint.
func (s *NovaScorer) avgSentiment(p model.Partner) float64 {
	if avg, ok := s.analyzer.Average(p.Comments()); ok {
		return avg
	}
	if p.OverallSentimentScore != nil {
		return *p.OverallSentimentScore
	}
	return sentiment.Neutral
}

func riskOrdinal(r model.RiskLevel) int {
	switch r {
	case model.RiskLow:
		return 1
	case model.RiskHigh:
		return 3
	default:
		return 2
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func unit(v float64) float64 {
	return model.Clamp(v, 0, 1)
}

var defaultScorer = NewNovaScorer()

// ComputeNovaScore scores p with the default weights and lexicon.
func ComputeNovaScore(p model.Partner) int {
	return defaultScorer.Compute(p)
}

// ComputeBreakdown is ComputeNovaScore with every term exposed.
func ComputeBreakdown(p model.Partner) Breakdown {
	return defaultScorer.Breakdown(p)
}
