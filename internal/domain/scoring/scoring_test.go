package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	scoring "github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/sentiment"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v float64) *float64 { return &v }

func basePartner() model.Partner {
	return model.Partner{
		ID:               "p-1",
		TripVolume:       120,
		OnTimePickupRate: 0.5,
		LeavesTaken:      2,
		VehicleCondition: 80,
		AvgRating:        4.2,
		CancellationRate: 0.1,
		EarningsHistory:  []float64{1800, 2000, 2200, 2100, 1900, 2000},
		RiskLevel:        model.RiskMedium,
	}
}

func TestDefaultWeights(t *testing.T) {
	Convey("Given the default weights", t, func() {
		lo, hi := scoring.DefaultWeights().Range()

		Convey("Then the raw range is [-370, 920]", func() {
			So(lo, ShouldEqual, -370.0)
			So(hi, ShouldEqual, 920.0)
		})
	})
}

func TestComputeNovaScore_Bounds(t *testing.T) {
	Convey("Given the best possible partner", t, func() {
		p := model.Partner{
			TripVolume:            500,
			OnTimePickupRate:      1,
			VehicleCondition:      100,
			AvgRating:             5,
			EarningsHistory:       []float64{9000, 9000},
			RiskLevel:             model.RiskLow,
			OverallSentimentScore: ptr(5),
		}

		Convey("Then the score stays under the ceiling", func() {
			score := scoring.ComputeNovaScore(p)
			So(score, ShouldEqual, 948)
		})
	})

	Convey("Given the worst possible partner", t, func() {
		p := model.Partner{
			CancellationRate:      1,
			LeavesTaken:           40,
			RiskLevel:             model.RiskHigh,
			OverallSentimentScore: ptr(0),
		}

		Convey("Then the score is zero", func() {
			So(scoring.ComputeNovaScore(p), ShouldEqual, 0)
		})
	})

	Convey("Given a partner with every field out of range", t, func() {
		p := model.Partner{
			TripVolume:            -50,
			OnTimePickupRate:      7,
			LeavesTaken:           -3,
			VehicleCondition:      900,
			AvgRating:             math.NaN(),
			CancellationRate:      -2,
			EarningsHistory:       []float64{math.Inf(1), -4},
			RiskLevel:             "unknown",
			OverallSentimentScore: ptr(-10),
		}

		Convey("Then the score is still within [0, 1000]", func() {
			score := scoring.ComputeNovaScore(p)
			So(score, ShouldBeBetweenOrEqual, 0, model.MaxNovaScore)
		})
	})

	Convey("Given an all-zero partner", t, func() {
		Convey("Then no average divides by zero", func() {
			b := scoring.ComputeBreakdown(model.Partner{})
			So(b.AvgEarnings, ShouldEqual, 0.0)
			So(b.AvgSentiment, ShouldEqual, sentiment.Neutral)
			So(b.RiskOrdinal, ShouldEqual, 2)
			So(b.Score, ShouldEqual, 300)
		})
	})
}

func TestComputeNovaScore_Properties(t *testing.T) {
	Convey("Given a typical partner", t, func() {
		p := basePartner()

		Convey("When scoring twice", func() {
			Convey("Then the results are identical", func() {
				So(scoring.ComputeNovaScore(p), ShouldEqual, scoring.ComputeNovaScore(p))
				So(scoring.ComputeBreakdown(p), ShouldResemble, scoring.ComputeBreakdown(p))
			})
		})

		Convey("When increasing the on-time pickup rate", func() {
			Convey("Then the score never decreases", func() {
				prev := -1
				for i := 0; i <= 10; i++ {
					p.OnTimePickupRate = float64(i) / 10
					score := scoring.ComputeNovaScore(p)
					So(score, ShouldBeGreaterThanOrEqualTo, prev)
					prev = score
				}
			})
		})

		Convey("When increasing the cancellation rate", func() {
			Convey("Then the score never increases", func() {
				prev := math.MaxInt
				for i := 0; i <= 10; i++ {
					p.CancellationRate = float64(i) / 10
					score := scoring.ComputeNovaScore(p)
					So(score, ShouldBeLessThanOrEqualTo, prev)
					prev = score
				}
			})
		})

		Convey("When only the risk level differs", func() {
			low, high := p, p
			low.RiskLevel = model.RiskLow
			high.RiskLevel = model.RiskHigh

			Convey("Then low risk outscores high risk by at least 60 points", func() {
				So(scoring.ComputeNovaScore(low)-scoring.ComputeNovaScore(high), ShouldBeGreaterThanOrEqualTo, 60)
			})
		})
	})
}

func TestComputeNovaScore_Sentiment(t *testing.T) {
	Convey("Given a partner with both review text and an overall sentiment", t, func() {
		p := basePartner()
		p.OverallSentimentScore = ptr(0.5)
		p.RawReviewsText = "Excellent, friendly and punctual. Great!|Fantastic ride"

		Convey("Then the review text wins", func() {
			b := scoring.ComputeBreakdown(p)
			So(b.AvgSentiment, ShouldAlmostEqual, 4.25)
		})

		Convey("When the review text is blank", func() {
			p.RawReviewsText = " | "

			Convey("Then the overall sentiment is used", func() {
				So(scoring.ComputeBreakdown(p).AvgSentiment, ShouldEqual, 0.5)
			})
		})
	})
}

func TestNovaScorer_Score(t *testing.T) {
	Convey("Given a scorer with custom weights", t, func() {
		scorer := scoring.NewNovaScorer(scoring.WithWeights(scoring.Weights{Punctuality: 100}))

		Convey("When scoring through the Scorer interface", func() {
			var s scoring.Scorer = scorer
			res, err := s.Score(context.Background(), scoring.Input{Partner: basePartner()})

			Convey("Then the score is rescaled over the custom range", func() {
				So(err, ShouldBeNil)
				So(res.PartnerID, ShouldEqual, "p-1")
				So(res.Score, ShouldEqual, 500)
				So(res.Breakdown.Raw, ShouldEqual, 50.0)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scorer.Score(ctx, scoring.Input{Partner: basePartner()})

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given invalid weights", t, func() {
		w := scoring.DefaultWeights()
		w.Risk = -1
		scorer := scoring.NewNovaScorer(scoring.WithWeights(w), scoring.WithAnalyzer(nil))

		Convey("Then the defaults are kept", func() {
			So(scorer.Weights(), ShouldResemble, scoring.DefaultWeights())
			So(scorer.Compute(basePartner()), ShouldEqual, scoring.ComputeNovaScore(basePartner()))
		})
	})
}
