package fairness_test

import (
	"testing"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/fairness"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given partners spread over age groups", t, func() {
		partners := []model.Partner{
			{ID: "a", AgeGroup: "18-25", NovaScore: 600},
			{ID: "b", AgeGroup: "18-25", NovaScore: 400},
			{ID: "c", AgeGroup: "26-35", NovaScore: 800},
			{ID: "d", NovaScore: 200},
		}

		Convey("When computing fairness metrics", func() {
			got := fairness.Compute(partners)

			Convey("Then each category yields one metric per group in order", func() {
				So(got, ShouldHaveLength, 6)
				So(got[0].Category, ShouldEqual, model.CategoryAge)
				So(got[0].Group, ShouldEqual, "18-25")
				So(got[1].Group, ShouldEqual, "26-35")
				So(got[2].Group, ShouldEqual, fairness.Unspecified)
				So(got[3].Category, ShouldEqual, model.CategoryArea)
				So(got[5].Category, ShouldEqual, model.CategoryEthnicity)
			})

			Convey("Then averages, counts and bias follow the overall mean", func() {
				So(got[0].AverageScore, ShouldEqual, 500.0)
				So(got[0].Count, ShouldEqual, 2)
				So(got[0].Bias, ShouldEqual, 0.0)
				So(got[1].Bias, ShouldEqual, 0.6)
				So(got[2].Bias, ShouldEqual, -0.6)
				So(got[4].Count, ShouldEqual, 4)
				So(got[4].Demographic, ShouldEqual, "Gender")
			})
		})
	})

	Convey("Given a group far above the overall mean", t, func() {
		got := fairness.Compute([]model.Partner{
			{AreaType: "urban", NovaScore: 1000},
			{AreaType: "rural", NovaScore: 0},
			{AreaType: "rural", NovaScore: 0},
			{AreaType: "rural", NovaScore: 0},
		})

		Convey("Then bias is clamped to one", func() {
			So(got[1].Group, ShouldEqual, "rural")
			So(got[1].Bias, ShouldEqual, -1.0)
			So(got[2].Group, ShouldEqual, "urban")
			So(got[2].Bias, ShouldEqual, 1.0)
		})
	})

	Convey("Given only zero scores", t, func() {
		got := fairness.Compute([]model.Partner{{Gender: "f"}})

		Convey("Then bias is zero rather than undefined", func() {
			for _, m := range got {
				So(m.Bias, ShouldEqual, 0.0)
			}
		})
	})

	Convey("Given no partners", t, func() {
		So(fairness.Compute(nil), ShouldBeEmpty)
	})
}
