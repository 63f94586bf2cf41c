package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	convey.Convey("Given a partner imported with malformed fields", t, func() {
		sentiment := 7.5
		p := model.Partner{
			ID:                    "  p-1 ",
			TripVolume:            -4,
			OnTimePickupRate:      1.3,
			VehicleCondition:      140,
			AvgRating:             math.NaN(),
			CancellationRate:      -0.2,
			NovaScore:             1200,
			EarningsHistory:       []float64{1000, 1200, -5},
			ForecastedEarnings:    []float64{1, 2, 3, 4, 5, 6},
			RiskLevel:             "HIGH",
			MedicalStability:      "unknown",
			OverallSentimentScore: &sentiment,
		}

		convey.Convey("When normalizing", func() {
			n := model.Normalize(p)

			convey.Convey("Then every field is defaulted into range", func() {
				convey.So(n.ID, convey.ShouldEqual, "p-1")
				convey.So(n.TripVolume, convey.ShouldEqual, 0)
				convey.So(n.OnTimePickupRate, convey.ShouldEqual, 1.0)
				convey.So(n.VehicleCondition, convey.ShouldEqual, 100)
				convey.So(n.AvgRating, convey.ShouldEqual, 0.0)
				convey.So(n.CancellationRate, convey.ShouldEqual, 0.0)
				convey.So(n.NovaScore, convey.ShouldEqual, 1000)
				convey.So(n.RiskLevel, convey.ShouldEqual, model.RiskHigh)
				convey.So(n.MedicalStability, convey.ShouldEqual, model.MedicalStable)
				convey.So(*n.OverallSentimentScore, convey.ShouldEqual, 5.0)
			})

			convey.Convey("Then series are right-padded or trimmed to their window", func() {
				convey.So(n.EarningsHistory, convey.ShouldResemble, []float64{1000, 1200, 0, 0, 0, 0})
				convey.So(n.ForecastedEarnings, convey.ShouldResemble, []float64{3, 4, 5, 6})
			})

			convey.Convey("Then the input is left untouched", func() {
				convey.So(p.EarningsHistory, convey.ShouldHaveLength, 3)
				convey.So(sentiment, convey.ShouldEqual, 7.5)
			})
		})
	})

	convey.Convey("Given a partner with no risk level", t, func() {
		n := model.Normalize(model.Partner{})

		convey.Convey("Then the risk defaults to medium", func() {
			convey.So(n.RiskLevel, convey.ShouldEqual, model.RiskMedium)
			convey.So(n.EarningsHistory, convey.ShouldHaveLength, model.EarningsWindow)
			convey.So(n.ForecastedEarnings, convey.ShouldHaveLength, model.ForecastWindow)
		})
	})
}

func TestComments(t *testing.T) {
	convey.Convey("Given raw review text joined with the delimiter", t, func() {
		p := model.Partner{RawReviewsText: " great ride | | late again|  "}

		convey.Convey("Then comments are trimmed and empty ones dropped", func() {
			convey.So(p.Comments(), convey.ShouldResemble, []string{"great ride", "late again"})
		})
	})

	convey.Convey("Given blank review text", t, func() {
		convey.So(model.Partner{RawReviewsText: "   "}.Comments(), convey.ShouldBeEmpty)
	})
}

func TestClone(t *testing.T) {
	convey.Convey("Given a partner with slices and pointers", t, func() {
		s := 3.0
		p := model.Partner{EarningsHistory: []float64{1, 2}, OverallSentimentScore: &s}

		convey.Convey("When the clone is modified", func() {
			c := p.Clone()
			c.EarningsHistory[0] = 99
			*c.OverallSentimentScore = 1

			convey.Convey("Then the original does not change", func() {
				convey.So(p.EarningsHistory[0], convey.ShouldEqual, 1.0)
				convey.So(*p.OverallSentimentScore, convey.ShouldEqual, 3.0)
			})
		})
	})
}

func TestPartnerUpdate(t *testing.T) {
	convey.Convey("Given a stored partner", t, func() {
		base := model.Normalize(model.Partner{ID: "p-1", Name: "Asha", RiskLevel: model.RiskLow})

		convey.Convey("When applying a valid update", func() {
			name := "Asha K"
			rate := 0.9
			risk := model.RiskHigh
			now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
			u := model.PartnerUpdate{Name: &name, OnTimePickupRate: &rate, RiskLevel: &risk, LastActive: &now,
				EarningsHistory: []float64{500}}

			convey.So(u.Validate(), convey.ShouldBeNil)
			out := u.Apply(base)

			convey.Convey("Then only the set fields change", func() {
				convey.So(out.ID, convey.ShouldEqual, "p-1")
				convey.So(out.Name, convey.ShouldEqual, "Asha K")
				convey.So(out.OnTimePickupRate, convey.ShouldEqual, 0.9)
				convey.So(out.RiskLevel, convey.ShouldEqual, model.RiskHigh)
				convey.So(out.LastActive, convey.ShouldEqual, now)
				convey.So(out.EarningsHistory, convey.ShouldResemble, []float64{500, 0, 0, 0, 0, 0})
				convey.So(out.MedicalStability, convey.ShouldEqual, model.MedicalStable)
			})

			convey.Convey("Then the field list names every set field", func() {
				convey.So(u.Fields(), convey.ShouldResemble,
					[]string{"name", "onTimePickupRate", "earningsHistory", "riskLevel", "lastActive"})
				convey.So(u.Empty(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the update carries out-of-range values", func() {
			bad := 1.5
			risk := model.RiskLevel("extreme")
			vehicle := 101

			convey.Convey("Then validation rejects each of them", func() {
				for _, u := range []model.PartnerUpdate{
					{CancellationRate: &bad},
					{RiskLevel: &risk},
					{VehicleCondition: &vehicle},
					{ForecastedEarnings: []float64{10, -1}},
				} {
					err := u.Validate()
					convey.So(errors.Is(err, model.ErrInvalidUpdate), convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When the update is empty", func() {
			convey.So(model.PartnerUpdate{}.Empty(), convey.ShouldBeTrue)
		})
	})
}

func TestSyncStatusClone(t *testing.T) {
	convey.Convey("Given a status with a last sync time", t, func() {
		now := time.Now()
		s := model.SyncStatus{Status: model.SyncIdle, LastSync: &now}
		c := s.Clone()
		*c.LastSync = now.Add(time.Hour)

		convey.So(s.LastSync.Equal(now), convey.ShouldBeTrue)
		convey.So(model.SyncOffline.Ordinal(), convey.ShouldEqual, 3.0)
	})
}
