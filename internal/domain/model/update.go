package model

import (
	"fmt"
	"math"
	"time"
)

// PartnerUpdate is a partial update of a Partner. Nil fields are left
// untouched. The id is not updatable.
type PartnerUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`

	TripVolume       *int     `json:"tripVolume,omitempty"`
	OnTimePickupRate *float64 `json:"onTimePickupRate,omitempty"`
	LeavesTaken      *int     `json:"leavesTaken,omitempty"`
	VehicleCondition *int     `json:"vehicleCondition,omitempty"`
	TotalTrips       *int     `json:"totalTrips,omitempty"`
	AvgRating        *float64 `json:"avgRating,omitempty"`
	CancellationRate *float64 `json:"cancellationRate,omitempty"`

	EarningsHistory    []float64 `json:"earningsHistory,omitempty"`
	ForecastedEarnings []float64 `json:"forecastedEarnings,omitempty"`

	MedicalStability *MedicalStability `json:"medicalStability,omitempty"`
	RiskLevel        *RiskLevel        `json:"riskLevel,omitempty"`
	AgeGroup         *string           `json:"ageGroup,omitempty"`
	Gender           *string           `json:"gender,omitempty"`
	Ethnicity        *string           `json:"ethnicity,omitempty"`
	AreaType         *string           `json:"areaType,omitempty"`

	NovaScore             *int     `json:"novaScore,omitempty"`
	OverallSentimentScore *float64 `json:"overallSentimentScore,omitempty"`
	RawReviewsText        *string  `json:"rawReviewsText,omitempty"`

	LastActive *time.Time `json:"lastActive,omitempty"`
}

// Validate rejects out-of-range values before they reach a record.
func (u PartnerUpdate) Validate() error {
	checks := []struct {
		field string
		bad   bool
	}{
		{"tripVolume", u.TripVolume != nil && *u.TripVolume < 0},
		{"onTimePickupRate", u.OnTimePickupRate != nil && !inRange(*u.OnTimePickupRate, 0, 1)},
		{"leavesTaken", u.LeavesTaken != nil && *u.LeavesTaken < 0},
		{"vehicleCondition", u.VehicleCondition != nil && (*u.VehicleCondition < 0 || *u.VehicleCondition > MaxVehicleScore)},
		{"totalTrips", u.TotalTrips != nil && *u.TotalTrips < 0},
		{"avgRating", u.AvgRating != nil && !inRange(*u.AvgRating, 0, MaxRating)},
		{"cancellationRate", u.CancellationRate != nil && !inRange(*u.CancellationRate, 0, 1)},
		{"earningsHistory", !nonNegativeSeries(u.EarningsHistory)},
		{"forecastedEarnings", !nonNegativeSeries(u.ForecastedEarnings)},
		{"medicalStability", u.MedicalStability != nil && !u.MedicalStability.Valid()},
		{"riskLevel", u.RiskLevel != nil && !u.RiskLevel.Valid()},
		{"novaScore", u.NovaScore != nil && (*u.NovaScore < 0 || *u.NovaScore > MaxNovaScore)},
		{"overallSentimentScore", u.OverallSentimentScore != nil && !inRange(*u.OverallSentimentScore, 0, MaxRating)},
	}
	for _, c := range checks {
		if c.bad {
			return fmt.Errorf("%w: %s out of range", ErrInvalidUpdate, c.field)
		}
	}
	return nil
}

// Empty reports whether the update sets no field.
func (u PartnerUpdate) Empty() bool {
	return len(u.Fields()) == 0
}

// Fields lists the JSON names of the fields the update sets.
func (u PartnerUpdate) Fields() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(u.Name != nil, "name")
	add(u.Email != nil, "email")
	add(u.Phone != nil, "phone")
	add(u.TripVolume != nil, "tripVolume")
	add(u.OnTimePickupRate != nil, "onTimePickupRate")
	add(u.LeavesTaken != nil, "leavesTaken")
	add(u.VehicleCondition != nil, "vehicleCondition")
	add(u.TotalTrips != nil, "totalTrips")
	add(u.AvgRating != nil, "avgRating")
	add(u.CancellationRate != nil, "cancellationRate")
	add(u.EarningsHistory != nil, "earningsHistory")
	add(u.ForecastedEarnings != nil, "forecastedEarnings")
	add(u.MedicalStability != nil, "medicalStability")
	add(u.RiskLevel != nil, "riskLevel")
	add(u.AgeGroup != nil, "ageGroup")
	add(u.Gender != nil, "gender")
	add(u.Ethnicity != nil, "ethnicity")
	add(u.AreaType != nil, "areaType")
	add(u.NovaScore != nil, "novaScore")
	add(u.OverallSentimentScore != nil, "overallSentimentScore")
	add(u.RawReviewsText != nil, "rawReviewsText")
	add(u.LastActive != nil, "lastActive")
	return out
}

// Apply merges the update into a copy of p. Callers validate first.
func (u PartnerUpdate) Apply(p Partner) Partner {
	n := p.Clone()
	setString(&n.Name, u.Name)
	setString(&n.Email, u.Email)
	setString(&n.Phone, u.Phone)
	setInt(&n.TripVolume, u.TripVolume)
	setFloat(&n.OnTimePickupRate, u.OnTimePickupRate)
	setInt(&n.LeavesTaken, u.LeavesTaken)
	setInt(&n.VehicleCondition, u.VehicleCondition)
	setInt(&n.TotalTrips, u.TotalTrips)
	setFloat(&n.AvgRating, u.AvgRating)
	setFloat(&n.CancellationRate, u.CancellationRate)
	if u.EarningsHistory != nil {
		n.EarningsHistory = fitWindow(u.EarningsHistory, EarningsWindow)
	}
	if u.ForecastedEarnings != nil {
		n.ForecastedEarnings = fitWindow(u.ForecastedEarnings, ForecastWindow)
	}
	if u.MedicalStability != nil {
		n.MedicalStability = *u.MedicalStability
	}
	if u.RiskLevel != nil {
		n.RiskLevel = *u.RiskLevel
	}
	setString(&n.AgeGroup, u.AgeGroup)
	setString(&n.Gender, u.Gender)
	setString(&n.Ethnicity, u.Ethnicity)
	setString(&n.AreaType, u.AreaType)
	setInt(&n.NovaScore, u.NovaScore)
	if u.OverallSentimentScore != nil {
		v := *u.OverallSentimentScore
		n.OverallSentimentScore = &v
	}
	setString(&n.RawReviewsText, u.RawReviewsText)
	if u.LastActive != nil {
		n.LastActive = *u.LastActive
	}
	return n
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func nonNegativeSeries(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}
