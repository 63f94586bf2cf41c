package model

import "time"

// SentimentCategory is the bucket a sentiment score falls into.
type SentimentCategory string

const (
	SentimentPositive SentimentCategory = "positive"
	SentimentNeutral  SentimentCategory = "neutral"
	SentimentNegative SentimentCategory = "negative"
)

// Review is one customer rating event. PartnerID is a non-owning reference:
// deleting the partner leaves the review in place.
type Review struct {
	ID             string            `json:"id"`
	PartnerID      string            `json:"partnerId"`
	Rating         int               `json:"rating"`
	Comment        string            `json:"comment"`
	Sentiment      SentimentCategory `json:"sentiment"`
	SentimentScore *float64          `json:"sentimentScore,omitempty"`
	Date           time.Time         `json:"date"`
	TripID         string            `json:"tripId"`
}

// Clone returns a deep copy of r.
func (r Review) Clone() Review {
	c := r
	if r.SentimentScore != nil {
		v := *r.SentimentScore
		c.SentimentScore = &v
	}
	return c
}

// FairnessCategory is the demographic dimension a metric groups by.
type FairnessCategory string

const (
	CategoryAge       FairnessCategory = "age"
	CategoryArea      FairnessCategory = "area"
	CategoryGender    FairnessCategory = "gender"
	CategoryEthnicity FairnessCategory = "ethnicity"
)

// FairnessMetric is an aggregate over partners sharing a demographic group.
// Bias lies in [-1,1]; 0 means no measurable bias.
type FairnessMetric struct {
	Demographic  string           `json:"demographic"`
	Category     FairnessCategory `json:"category"`
	Group        string           `json:"group"`
	AverageScore float64          `json:"averageScore"`
	Count        int              `json:"count"`
	Bias         float64          `json:"bias"`
}

// ScoreJob is a unit of rescoring work. Index keeps results aligned with the
// submitted batch.
type ScoreJob struct {
	Index   int
	Partner Partner
}
