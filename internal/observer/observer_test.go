package observer_test

import (
	"testing"

	"github.com/MidhulKiruthik/Nova-sub000/internal/observer"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a registry with two subscribers", t, func() {
		var r observer.Registry[int]
		var a, b []int
		unsubA := r.Subscribe(func(v int) { a = append(a, v) })
		r.Subscribe(func(v int) { b = append(b, v) })

		Convey("When notifying", func() {
			r.Notify(7)

			Convey("Then each callback runs exactly once", func() {
				So(a, ShouldResemble, []int{7})
				So(b, ShouldResemble, []int{7})
				So(r.Len(), ShouldEqual, 2)
			})
		})

		Convey("When one subscriber unsubscribes twice", func() {
			unsubA()
			unsubA()
			r.Notify(9)

			Convey("Then it stops receiving and the other is unaffected", func() {
				So(a, ShouldBeEmpty)
				So(b, ShouldResemble, []int{9})
				So(r.Len(), ShouldEqual, 1)
			})
		})

		Convey("When a callback unsubscribes itself during notify", func() {
			var self observer.Unsubscribe
			calls := 0
			self = r.Subscribe(func(int) {
				calls++
				self()
			})
			r.Notify(1)
			r.Notify(2)

			Convey("Then it does not deadlock and runs once", func() {
				So(calls, ShouldEqual, 1)
				So(r.Len(), ShouldEqual, 2)
			})
		})

		Convey("When subscribing a nil callback", func() {
			unsub := r.Subscribe(nil)
			unsub()

			Convey("Then nothing is registered", func() {
				So(r.Len(), ShouldEqual, 2)
			})
		})
	})
}
