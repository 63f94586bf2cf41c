// Package model contains the records shared between the store, the scoring
// engine and the adapters.
package model

import (
	"math"
	"strings"
	"time"
)

// Series windows fixed by the current schema version.
const (
	EarningsWindow = 6
	ForecastWindow = 4

	MaxNovaScore     = 1000
	MaxRating        = 5.0
	MaxVehicleScore  = 100
	ReviewsDelimiter = "|"
)

// RiskLevel is the categorical risk attached to a partner.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// MedicalStability is the categorical health attribute of a partner.
type MedicalStability string

const (
	MedicalStable     MedicalStability = "stable"
	MedicalModerate   MedicalStability = "moderate"
	MedicalConcerning MedicalStability = "concerning"
)

// Valid reports whether m is one of the known values.
func (m MedicalStability) Valid() bool {
	switch m {
	case MedicalStable, MedicalModerate, MedicalConcerning:
		return true
	}
	return false
}

// Partner is one gig-economy worker record.
type Partner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	TripVolume       int     `json:"tripVolume"`
	OnTimePickupRate float64 `json:"onTimePickupRate"`
	LeavesTaken      int     `json:"leavesTaken"`
	VehicleCondition int     `json:"vehicleCondition"`
	TotalTrips       int     `json:"totalTrips"`
	AvgRating        float64 `json:"avgRating"`
	CancellationRate float64 `json:"cancellationRate"`

	EarningsHistory    []float64 `json:"earningsHistory"`
	ForecastedEarnings []float64 `json:"forecastedEarnings"`

	MedicalStability MedicalStability `json:"medicalStability"`
	RiskLevel        RiskLevel        `json:"riskLevel"`
	AgeGroup         string           `json:"ageGroup"`
	Gender           string           `json:"gender"`
	Ethnicity        string           `json:"ethnicity"`
	AreaType         string           `json:"areaType"`

	NovaScore             int      `json:"novaScore"`
	OverallSentimentScore *float64 `json:"overallSentimentScore,omitempty"`
	RawReviewsText        string   `json:"rawReviewsText,omitempty"`

	JoinDate   time.Time `json:"joinDate"`
	LastActive time.Time `json:"lastActive"`
}

// Clone returns a deep copy of p.
func (p Partner) Clone() Partner {
	c := p
	c.EarningsHistory = append([]float64(nil), p.EarningsHistory...)
	c.ForecastedEarnings = append([]float64(nil), p.ForecastedEarnings...)
	if p.OverallSentimentScore != nil {
		v := *p.OverallSentimentScore
		c.OverallSentimentScore = &v
	}
	return c
}

// Comments splits RawReviewsText into trimmed, non-empty comments.
func (p Partner) Comments() []string {
	if strings.TrimSpace(p.RawReviewsText) == "" {
		return nil
	}
	parts := strings.Split(p.RawReviewsText, ReviewsDelimiter)
	out := make([]string, 0, len(parts))
	for _, c := range parts {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Normalize returns a copy of p with malformed or missing fields defaulted.
// It never fails.
func Normalize(p Partner) Partner {
	n := p.Clone()
	n.ID = strings.TrimSpace(n.ID)

	n.TripVolume = nonNegative(n.TripVolume)
	n.LeavesTaken = nonNegative(n.LeavesTaken)
	n.TotalTrips = nonNegative(n.TotalTrips)
	n.VehicleCondition = clampInt(n.VehicleCondition, 0, MaxVehicleScore)
	n.OnTimePickupRate = Clamp(n.OnTimePickupRate, 0, 1)
	n.CancellationRate = Clamp(n.CancellationRate, 0, 1)
	n.AvgRating = Clamp(n.AvgRating, 0, MaxRating)
	n.NovaScore = clampInt(n.NovaScore, 0, MaxNovaScore)

	n.EarningsHistory = fitWindow(n.EarningsHistory, EarningsWindow)
	n.ForecastedEarnings = fitWindow(n.ForecastedEarnings, ForecastWindow)

	if !n.RiskLevel.Valid() {
		n.RiskLevel = RiskLevel(strings.ToLower(strings.TrimSpace(string(n.RiskLevel))))
		if !n.RiskLevel.Valid() {
			n.RiskLevel = RiskMedium
		}
	}
	if !n.MedicalStability.Valid() {
		n.MedicalStability = MedicalStability(strings.ToLower(strings.TrimSpace(string(n.MedicalStability))))
		if !n.MedicalStability.Valid() {
			n.MedicalStability = MedicalStable
		}
	}
	if n.OverallSentimentScore != nil {
		v := Clamp(*n.OverallSentimentScore, 0, MaxRating)
		n.OverallSentimentScore = &v
	}
	return n
}

// fitWindow right-pads s with zeros to size, or keeps the most recent size
// entries when s is longer. Negative, NaN and infinite entries become zero.
func fitWindow(s []float64, size int) []float64 {
	out := make([]float64, size)
	start := 0
	if len(s) > size {
		start = len(s) - size
	}
	for i, v := range s[start:] {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}

// Clamp bounds v to [lo, hi]. NaN becomes lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
