package seed_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/MidhulKiruthik/Nova-sub000/internal/app"
	"github.com/MidhulKiruthik/Nova-sub000/internal/config"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/seed"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		partners := seed.NewGenerator(42, now).Generate(200)

		Convey("Then every partner is valid", func() {
			So(partners, ShouldHaveLength, 200)
			ids := make(map[string]bool)
			for _, p := range partners {
				So(ids[p.ID], ShouldBeFalse)
				ids[p.ID] = true
				So(p.Name, ShouldNotBeBlank)
				So(p.OnTimePickupRate, ShouldBeBetweenOrEqual, 0, 1)
				So(p.CancellationRate, ShouldBeBetweenOrEqual, 0, 1)
				So(p.AvgRating, ShouldBeBetweenOrEqual, 0, model.MaxRating)
				So(p.VehicleCondition, ShouldBeBetweenOrEqual, 0, model.MaxVehicleScore)
				So(p.EarningsHistory, ShouldHaveLength, model.EarningsWindow)
				So(p.ForecastedEarnings, ShouldHaveLength, model.ForecastWindow)
				So(p.RiskLevel.Valid(), ShouldBeTrue)
				So(p.MedicalStability.Valid(), ShouldBeTrue)
				So(p.Comments(), ShouldNotBeEmpty)
				So(p.JoinDate.Before(now), ShouldBeTrue)
			}
		})

		Convey("And the same seed yields the same metrics", func() {
			again := seed.NewGenerator(42, now).Generate(200)
			for i := range partners {
				So(again[i].Name, ShouldEqual, partners[i].Name)
				So(again[i].TripVolume, ShouldEqual, partners[i].TripVolume)
				So(again[i].RawReviewsText, ShouldEqual, partners[i].RawReviewsText)
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running Nova service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.StorageBackend = config.BackendMemory
		cfg.WorkerCount = 2
		svc := service.New(cfg)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)
		h, err := svc.Handler(ctx)
		So(err, ShouldBeNil)
		srv := httptest.NewServer(h)
		defer srv.Close()

		Convey("When seeding a single batch", func() {
			out := filepath.Join(t.TempDir(), "out", "partners.json")
			stats, err := seed.Run(ctx, seed.Config{
				BaseURL:    srv.URL,
				Count:      30,
				BatchSize:  30,
				TopN:       5,
				Seed:       7,
				OutputFile: out,
			}, nil)

			Convey("Then every partner is imported and ranked", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 30)
				So(stats.Imported, ShouldEqual, 30)
				So(stats.Batches, ShouldEqual, 1)
				So(stats.Leaderboard, ShouldEqual, 5)
				So(svc.Store().Partners(), ShouldHaveLength, 30)
			})

			Convey("And the partners are written to the output file", func() {
				_, err := os.Stat(out)
				So(err, ShouldBeNil)
			})
		})

		Convey("When seeding across several batches", func() {
			stats, err := seed.Run(ctx, seed.Config{BaseURL: srv.URL, Count: 25, BatchSize: 10, TopN: 3, Seed: 9}, nil)

			Convey("Then the last batch is what the store holds", func() {
				So(err, ShouldBeNil)
				So(stats.Batches, ShouldEqual, 3)
				So(stats.Imported, ShouldEqual, 25)
				So(svc.Store().Partners(), ShouldHaveLength, 5)
			})
		})
	})

	Convey("Given no service", t, func() {
		_, err := seed.Run(context.Background(), seed.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil)

		Convey("Then the health check fails", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, seed.ErrVerification), ShouldBeFalse)
		})
	})
}
