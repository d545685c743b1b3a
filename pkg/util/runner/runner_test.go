package runner

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestRunner(t *testing.T) {
	Convey("Runner", t, func() {
		logger := zaptest.NewLogger(t)
		r := New("test-runner", logger)

		Reset(func() {
			r.Stop()
			So(r.State(), ShouldEqual, Stopped)
		})

		Convey("state should be Running before Stop and Stopped after it", func() {
			So(r.State(), ShouldEqual, Running)
			r.Stop()
			So(r.State(), ShouldEqual, Stopped)
			So(r.String(), ShouldContainSubstring, "stopped")
		})

		Convey("Stop should be idempotent", func() {
			for i := 0; i < 3; i++ {
				r.Stop()
				So(r.State(), ShouldEqual, Stopped)
			}
		})

		Convey("stopped runner should reject new tasks", func() {
			r.Stop()
			_, err := r.Run("noop", func(context.Context) {})
			So(err, ShouldNotBeNil)
		})

		Convey("cancel should stop the task and release its slot", func() {
			var running atomic.Bool
			running.Store(true)
			cancel, err := r.Run("wait", func(ctx context.Context) {
				defer running.Store(false)
				<-ctx.Done()
			})
			So(err, ShouldBeNil)
			require.EventuallyWithT(t, func(collect *assert.CollectT) {
				assert.EqualValues(collect, 1, r.NumTasks())
			}, time.Second, 10*time.Millisecond)
			So(len(r.cancels), ShouldEqual, 1)

			cancel()
			So(len(r.cancels), ShouldBeZeroValue)
			require.EventuallyWithT(t, func(collect *assert.CollectT) {
				assert.Zero(collect, r.NumTasks())
				assert.False(collect, running.Load())
			}, time.Second, 10*time.Millisecond)
		})

		Convey("a panicking task should be recovered and counted", func() {
			_, err := r.Run("panic", func(context.Context) {
				panic("boom")
			})
			So(err, ShouldBeNil)
			require.EventuallyWithT(t, func(collect *assert.CollectT) {
				assert.EqualValues(collect, 1, r.NumPanics())
				assert.Zero(collect, r.NumTasks())
			}, time.Second, 10*time.Millisecond)
		})

		Convey("Stop should cancel every managed task", func() {
			const repeat = 100
			var done atomic.Int32
			for i := 0; i < repeat; i++ {
				_, err := r.Run("wait", func(ctx context.Context) {
					defer done.Add(1)
					<-ctx.Done()
				})
				So(err, ShouldBeNil)
			}
			r.Stop()
			So(done.Load(), ShouldEqual, repeat)
			So(len(r.cancels), ShouldBeZeroValue)
		})

		Convey("Stop should wait for tasks with unmanaged context until they are canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			err := r.RunC(ctx, "unmanaged", func(ctx context.Context) {
				<-ctx.Done()
			})
			So(err, ShouldBeNil)
			So(len(r.cancels), ShouldBeZeroValue)

			var stopped atomic.Bool
			go func() {
				defer stopped.Store(true)
				r.Stop()
			}()
			require.EventuallyWithT(t, func(collect *assert.CollectT) {
				assert.Equal(collect, Stopping, r.State())
			}, time.Second, 10*time.Millisecond)
			So(stopped.Load(), ShouldBeFalse)

			cancel()
			require.EventuallyWithT(t, func(collect *assert.CollectT) {
				assert.True(collect, stopped.Load())
			}, time.Second, 10*time.Millisecond)
			So(r.State(), ShouldEqual, Stopped)
		})
	})
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
