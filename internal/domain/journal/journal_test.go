package journal_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/journal"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJournal(t *testing.T) {
	Convey("Given an empty journal on a fake clock", t, func() {
		start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		clock := clockwork.NewFakeClockAt(start)
		j := journal.New(journal.WithClock(clock), journal.WithRetention(3))

		Convey("When recording an event without id or timestamp", func() {
			ev := j.Record(model.DataChangeEvent{
				Type: model.ChangePartnerAdded,
				Data: map[string]any{"id": "p-1"},
			})

			Convey("Then both are assigned", func() {
				So(ev.ID, ShouldNotBeEmpty)
				So(ev.Timestamp.Equal(start), ShouldBeTrue)
				So(j.Len(), ShouldEqual, 1)
			})

			Convey("Then the returned payload is a copy", func() {
				ev.Data["id"] = "mutated"
				So(j.History()[0].Data["id"], ShouldEqual, "p-1")
			})
		})

		Convey("When the same record changes twice", func() {
			for i := 0; i < 2; i++ {
				clock.Advance(time.Second)
				j.Record(model.DataChangeEvent{Type: model.ChangePartnerUpdated, Data: map[string]any{"id": "p-1"}})
			}

			Convey("Then both changes are journaled oldest first", func() {
				h := j.History()
				So(h, ShouldHaveLength, 2)
				So(h[0].ID, ShouldNotEqual, h[1].ID)
				So(h[0].Timestamp.Before(h[1].Timestamp), ShouldBeTrue)
			})
		})

		Convey("When more events than the retention are recorded", func() {
			for i := 0; i < 5; i++ {
				j.Record(model.DataChangeEvent{ID: fmt.Sprintf("e-%d", i), Type: model.ChangePartnerDeleted})
			}

			Convey("Then Truncate keeps the most recent ones", func() {
				So(j.Truncate(), ShouldEqual, 2)
				h := j.History()
				So(h, ShouldHaveLength, 3)
				So(h[0].ID, ShouldEqual, "e-2")
				So(h[2].ID, ShouldEqual, "e-4")
				So(j.Truncate(), ShouldEqual, 0)
			})
		})

		Convey("When restoring persisted history", func() {
			var events []model.DataChangeEvent
			for i := 0; i < 4; i++ {
				events = append(events, model.DataChangeEvent{ID: fmt.Sprintf("old-%d", i)})
			}
			j.Restore(events)

			Convey("Then only the retention window is kept", func() {
				So(j.Len(), ShouldEqual, 3)
				So(j.History()[0].ID, ShouldEqual, "old-1")
			})

			Convey("And Reset clears everything", func() {
				j.Reset()
				So(j.Len(), ShouldEqual, 0)
				So(j.History(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a journal with default options", t, func() {
		So(journal.New().Retention(), ShouldEqual, journal.DefaultRetention)
	})
}
