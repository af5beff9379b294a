package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leaveflow/internal/scheduler"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

type countingTask struct {
	name string
	runs atomic.Int32
	err  error
}

func (t *countingTask) Name() string { return t.name }

func (t *countingTask) Run(_ context.Context) error {
	t.runs.Add(1)
	return t.err
}

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler

	BeforeEach(func() {
		s = scheduler.New(logger.Discard(), scheduler.WithRunTimeout(time.Minute))
	})

	It("rejects a malformed schedule", func() {
		err := s.Register("every day please", &countingTask{name: "bad"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects registering the same task name twice", func() {
		Expect(s.Register("@daily", &countingTask{name: "dup"})).To(Succeed())
		Expect(s.Register("@hourly", &countingTask{name: "dup"})).NotTo(Succeed())
	})

	It("computes the next daily run at midnight UTC", func() {
		Expect(s.Register("0 0 * * *", &countingTask{name: "daily"})).To(Succeed())
		s.Start()
		DeferCleanup(func() { _ = s.Stop(context.Background()) })

		next, ok := s.NextRun("daily")
		Expect(ok).To(BeTrue())
		Expect(next.UTC().Hour()).To(Equal(0))
		Expect(next.UTC().Minute()).To(Equal(0))
		Expect(next).To(BeTemporally(">", time.Now()))
	})

	It("runs a task directly through Trigger and surfaces its error", func() {
		task := &countingTask{name: "manual", err: errors.New("boom")}
		Expect(s.Trigger(context.Background(), task)).To(MatchError("boom"))
		Expect(task.runs.Load()).To(Equal(int32(1)))
	})

	It("fires tasks on their schedule", func() {
		task := &countingTask{name: "fast"}
		Expect(s.Register("@every 1s", task)).To(Succeed())
		s.Start()
		DeferCleanup(func() { _ = s.Stop(context.Background()) })

		Eventually(task.runs.Load, 3*time.Second, 100*time.Millisecond).Should(BeNumerically(">=", 1))
	})

	It("reports unknown tasks", func() {
		_, ok := s.NextRun("missing")
		Expect(ok).To(BeFalse())
	})
})
