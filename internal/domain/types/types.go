// Package types contains read shapes returned by the API layer.
package types

import (
	"sort"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
)

// Entry is one row of the Nova Score ranking.
type Entry struct {
	Rank      int             `json:"rank"`
	PartnerID string          `json:"partnerId"`
	Name      string          `json:"name"`
	NovaScore int             `json:"novaScore"`
	RiskLevel model.RiskLevel `json:"riskLevel"`
}

// SentimentResult is the response of a sentiment analysis.
type SentimentResult struct {
	Score    float64                 `json:"score"`
	Category model.SentimentCategory `json:"category"`
}

// Export is the payload handed to report generators.
type Export struct {
	Partners        []model.Partner        `json:"partners"`
	FairnessMetrics []model.FairnessMetric `json:"fairnessMetrics"`
}

// Rank orders partners by score DESC, then id ASC, and returns the first n
// entries with 1-based ranks. n <= 0 returns every partner.
func Rank(partners []model.Partner, n int) []Entry {
	sorted := make([]model.Partner, len(partners))
	copy(sorted, partners)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].NovaScore != sorted[j].NovaScore {
			return sorted[i].NovaScore > sorted[j].NovaScore
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n <= 0 || n > len(sorted) {
		n = len(sorted)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		p := sorted[i]
		out[i] = Entry{
			Rank:      i + 1,
			PartnerID: p.ID,
			Name:      p.Name,
			NovaScore: p.NovaScore,
			RiskLevel: p.RiskLevel,
		}
	}
	return out
}
