package syncer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/syncer"
	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeGateway struct {
	mu      sync.Mutex
	writes  int
	err     error
	block   chan struct{}
	started chan struct{}
}

func (g *fakeGateway) Write(ctx context.Context, _ map[string][]byte) error {
	g.mu.Lock()
	g.writes++
	block, started, err := g.block, g.started, g.err
	g.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (g *fakeGateway) Writes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.writes
}

func (g *fakeGateway) SetErr(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

var snapshot = syncer.SourceFunc(func(context.Context) (map[string][]byte, error) {
	return map[string][]byte{"nova_partners": []byte("[]")}, nil
})

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// settle gives a timer callback that should not exist a chance to run.
func settle() { time.Sleep(30 * time.Millisecond) }

func newScheduler(gw *fakeGateway, opts ...syncer.Option) (*syncer.Scheduler, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	opts = append([]syncer.Option{syncer.WithClock(clock)}, opts...)
	return syncer.New(gw, snapshot, opts...), clock
}

func TestScheduler_Debounce(t *testing.T) {
	Convey("Given an online scheduler", t, func() {
		gw := &fakeGateway{}
		s, clock := newScheduler(gw)

		Convey("When ten changes arrive inside the debounce window", func() {
			for i := 0; i < 10; i++ {
				s.MarkChanged()
				clock.Advance(100 * time.Millisecond)
			}

			Convey("Then nothing is written before the delay elapses", func() {
				clock.Advance(syncer.DefaultDelay - 200*time.Millisecond)
				settle()
				So(gw.Writes(), ShouldEqual, 0)
				So(s.Status().PendingChanges, ShouldEqual, 10)
			})

			Convey("Then exactly one flush happens after the delay", func() {
				clock.Advance(syncer.DefaultDelay)
				So(waitFor(func() bool { return s.Status().Status == model.SyncIdle && gw.Writes() == 1 }), ShouldBeTrue)
				So(waitFor(func() bool { return s.Status().PendingChanges == 0 }), ShouldBeTrue)
				settle()

				st := s.Status()
				So(gw.Writes(), ShouldEqual, 1)
				So(st.LastSync, ShouldNotBeNil)
				So(st.Error, ShouldBeEmpty)
			})
		})

		Convey("When the timer fires with nothing pending", func() {
			s.MarkChanged()
			So(s.ForceSync(context.Background()), ShouldBeNil)
			clock.Advance(syncer.DefaultDelay)
			settle()

			Convey("Then no extra write happens", func() {
				So(gw.Writes(), ShouldEqual, 1)
			})
		})
	})
}

func TestScheduler_Failure(t *testing.T) {
	Convey("Given a gateway that fails", t, func() {
		gw := &fakeGateway{err: errors.New("backend down")}
		s, clock := newScheduler(gw)

		Convey("When the flush runs", func() {
			s.MarkChanged()
			clock.Advance(syncer.DefaultDelay)

			Convey("Then the status is error and the change stays pending", func() {
				So(waitFor(func() bool { return s.Status().Status == model.SyncError }), ShouldBeTrue)
				st := s.Status()
				So(st.PendingChanges, ShouldEqual, 1)
				So(st.Error, ShouldContainSubstring, "backend down")
				So(st.LastSync, ShouldBeNil)
			})

			Convey("And a forced retry after recovery succeeds", func() {
				So(waitFor(func() bool { return s.Status().Status == model.SyncError }), ShouldBeTrue)
				gw.SetErr(nil)
				So(s.ForceSync(context.Background()), ShouldBeNil)

				st := s.Status()
				So(st.Status, ShouldEqual, model.SyncIdle)
				So(st.PendingChanges, ShouldEqual, 0)
				So(st.Error, ShouldBeEmpty)
			})
		})
	})
}

func TestScheduler_Connectivity(t *testing.T) {
	Convey("Given a scheduler with a pending change", t, func() {
		gw := &fakeGateway{}
		s, clock := newScheduler(gw)
		s.MarkChanged()

		Convey("When connectivity is lost", func() {
			s.SetOnline(false)

			Convey("Then the status is offline and the timer writes nothing", func() {
				So(s.Status().Status, ShouldEqual, model.SyncOffline)
				clock.Advance(syncer.DefaultDelay)
				settle()
				So(gw.Writes(), ShouldEqual, 0)
				So(s.Status().Status, ShouldEqual, model.SyncOffline)
				So(s.Status().PendingChanges, ShouldEqual, 1)
			})

			Convey("Then a forced sync is refused", func() {
				So(errors.Is(s.ForceSync(context.Background()), syncer.ErrOffline), ShouldBeTrue)
			})

			Convey("And when connectivity returns", func() {
				clock.Advance(syncer.DefaultDelay)
				settle()
				s.SetOnline(true)

				Convey("Then exactly one flush runs without another change", func() {
					So(gw.Writes(), ShouldEqual, 1)
					st := s.Status()
					So(st.Status, ShouldEqual, model.SyncIdle)
					So(st.PendingChanges, ShouldEqual, 0)

					clock.Advance(syncer.DefaultDelay)
					settle()
					So(gw.Writes(), ShouldEqual, 1)
				})
			})
		})

		Convey("When the same connectivity state is repeated", func() {
			var seen []model.SyncStatus
			s.Subscribe(func(st model.SyncStatus) { seen = append(seen, st) })
			s.SetOnline(true)

			Convey("Then no status is broadcast", func() {
				So(seen, ShouldBeEmpty)
				So(s.Online(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a scheduler that starts offline", t, func() {
		s, _ := newScheduler(&fakeGateway{}, syncer.WithOnline(false))
		So(s.Status().Status, ShouldEqual, model.SyncOffline)
	})
}

func TestScheduler_SingleFlight(t *testing.T) {
	Convey("Given a gateway that blocks until released", t, func() {
		gw := &fakeGateway{block: make(chan struct{}), started: make(chan struct{}, 4)}
		s, clock := newScheduler(gw)
		s.MarkChanged()

		done := make(chan error, 1)
		go func() { done <- s.ForceSync(context.Background()) }()
		<-gw.started

		Convey("When a second flush is requested mid-flight", func() {
			err := s.ForceSync(context.Background())

			Convey("Then it is refused", func() {
				So(errors.Is(err, syncer.ErrSyncInProgress), ShouldBeTrue)
				So(s.Status().Status, ShouldEqual, model.SyncSyncing)
				close(gw.block)
				So(<-done, ShouldBeNil)
			})
		})

		Convey("When a change arrives mid-flight", func() {
			s.MarkChanged()
			close(gw.block)
			So(<-done, ShouldBeNil)

			Convey("Then only the changes captured at the start are cleared", func() {
				So(s.Status().PendingChanges, ShouldEqual, 1)

				clock.Advance(syncer.DefaultDelay)
				<-gw.started
				So(waitFor(func() bool { return s.Status().PendingChanges == 0 }), ShouldBeTrue)
				So(gw.Writes(), ShouldEqual, 2)
			})
		})
	})
}

func TestScheduler_Broadcast(t *testing.T) {
	Convey("Given a subscriber", t, func() {
		gw := &fakeGateway{}
		s, _ := newScheduler(gw)
		var seen []model.SyncStatus
		unsub := s.Subscribe(func(st model.SyncStatus) { seen = append(seen, st) })

		Convey("When a change is forced through", func() {
			s.MarkChanged()
			So(s.ForceSync(context.Background()), ShouldBeNil)

			Convey("Then every transition is delivered in order", func() {
				So(seen, ShouldHaveLength, 3)
				So(seen[0].Status, ShouldEqual, model.SyncIdle)
				So(seen[0].PendingChanges, ShouldEqual, 1)
				So(seen[1].Status, ShouldEqual, model.SyncSyncing)
				So(seen[2].Status, ShouldEqual, model.SyncIdle)
				So(seen[2].PendingChanges, ShouldEqual, 0)
			})
		})

		Convey("When unsubscribed", func() {
			unsub()
			s.MarkChanged()
			So(seen, ShouldBeEmpty)
			So(s.Subscribers(), ShouldEqual, 0)
		})
	})
}

func TestScheduler_ResetAndClose(t *testing.T) {
	Convey("Given a scheduler with pending changes", t, func() {
		gw := &fakeGateway{}
		s, clock := newScheduler(gw)
		for i := 0; i < 3; i++ {
			s.MarkChanged()
		}

		Convey("When reset", func() {
			s.Reset()
			clock.Advance(syncer.DefaultDelay)
			settle()

			Convey("Then the counter is cleared and the timer cancelled", func() {
				So(s.Status().PendingChanges, ShouldEqual, 0)
				So(gw.Writes(), ShouldEqual, 0)
			})
		})

		Convey("When closed", func() {
			err := s.Close(context.Background())

			Convey("Then a final flush runs once", func() {
				So(err, ShouldBeNil)
				So(gw.Writes(), ShouldEqual, 1)
				So(s.Close(context.Background()), ShouldBeNil)
				So(gw.Writes(), ShouldEqual, 1)
			})

			Convey("Then later changes are never flushed", func() {
				s.MarkChanged()
				clock.Advance(syncer.DefaultDelay)
				settle()
				So(gw.Writes(), ShouldEqual, 1)
				So(errors.Is(s.ForceSync(context.Background()), syncer.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestScheduler_ResetDuringFlush(t *testing.T) {
	Convey("Given a flush blocked inside the gateway", t, func() {
		gw := &fakeGateway{block: make(chan struct{}), started: make(chan struct{}, 4)}
		s, _ := newScheduler(gw)
		s.MarkChanged()

		done := make(chan error, 1)
		go func() { done <- s.ForceSync(context.Background()) }()
		<-gw.started

		Convey("When the data is reset before the write lands", func() {
			s.Reset()
			So(s.Status().Status, ShouldEqual, model.SyncSyncing)
			close(gw.block)
			So(<-done, ShouldBeNil)

			Convey("Then the current state is written again", func() {
				So(gw.Writes(), ShouldEqual, 2)
				st := s.Status()
				So(st.Status, ShouldEqual, model.SyncIdle)
				So(st.PendingChanges, ShouldEqual, 0)
			})
		})

		Convey("When the flush finishes without a reset", func() {
			close(gw.block)
			So(<-done, ShouldBeNil)

			Convey("Then it writes once", func() {
				So(gw.Writes(), ShouldEqual, 1)
			})
		})
	})
}

func TestScheduler_ReentrantSubscriber(t *testing.T) {
	Convey("Given a subscriber that retries a failed sync", t, func() {
		gw := &fakeGateway{err: errors.New("backend down")}
		s, _ := newScheduler(gw)

		var (
			seen    []model.SyncStatus
			retried bool
			retry   error
		)
		s.Subscribe(func(st model.SyncStatus) {
			seen = append(seen, st)
			if st.Status == model.SyncError && !retried {
				retried = true
				gw.SetErr(nil)
				retry = s.ForceSync(context.Background())
			}
		})
		s.MarkChanged()

		Convey("When a forced sync fails", func() {
			done := make(chan error, 1)
			go func() { done <- s.ForceSync(context.Background()) }()

			var err error
			select {
			case err = <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("ForceSync did not return")
			}

			Convey("Then the retry runs without blocking and wins", func() {
				So(err, ShouldNotBeNil)
				So(retry, ShouldBeNil)
				So(gw.Writes(), ShouldEqual, 2)

				st := s.Status()
				So(st.Status, ShouldEqual, model.SyncIdle)
				So(st.PendingChanges, ShouldEqual, 0)
				So(st.Error, ShouldBeEmpty)
			})

			Convey("Then statuses still arrive in order", func() {
				var got []model.SyncState
				for _, st := range seen {
					got = append(got, st.Status)
				}
				So(got, ShouldResemble, []model.SyncState{
					model.SyncIdle, model.SyncSyncing, model.SyncError, model.SyncSyncing, model.SyncIdle,
				})
			})
		})
	})

	Convey("Given a subscriber that toggles connectivity", t, func() {
		gw := &fakeGateway{}
		s, _ := newScheduler(gw)
		s.Subscribe(func(st model.SyncStatus) {
			if st.Status == model.SyncOffline {
				s.SetOnline(true)
			}
		})
		s.MarkChanged()

		Convey("When connectivity drops", func() {
			s.SetOnline(false)

			Convey("Then the reconnect flush runs from the callback", func() {
				So(s.Online(), ShouldBeTrue)
				So(gw.Writes(), ShouldEqual, 1)
				So(s.Status().Status, ShouldEqual, model.SyncIdle)
			})
		})
	})
}

func TestScheduler_ReconnectClearsError(t *testing.T) {
	Convey("Given a failed sync with nothing pending", t, func() {
		gw := &fakeGateway{err: errors.New("backend down")}
		s, _ := newScheduler(gw)
		So(s.ForceSync(context.Background()), ShouldNotBeNil)
		So(s.Status().Status, ShouldEqual, model.SyncError)

		Convey("When connectivity drops and returns", func() {
			s.SetOnline(false)
			var seen []model.SyncStatus
			s.Subscribe(func(st model.SyncStatus) { seen = append(seen, st) })
			s.SetOnline(true)

			Convey("Then the idle status carries no stale error", func() {
				st := s.Status()
				So(st.Status, ShouldEqual, model.SyncIdle)
				So(st.Error, ShouldBeEmpty)
				So(seen, ShouldHaveLength, 1)
				So(seen[0].Error, ShouldBeEmpty)
				So(gw.Writes(), ShouldEqual, 1)
			})
		})
	})
}
