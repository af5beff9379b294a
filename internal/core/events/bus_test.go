package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leaveflow/internal/core/events"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
	})

	event := func(eventType string) events.BaseEvent {
		return events.BaseEvent{ID: "evt-1", Type: eventType, Timestamp: time.Now()}
	}

	It("runs every subscriber and waits for them", func() {
		var calls atomic.Int32
		for range 2 {
			bus.Subscribe("leave.decided", func(context.Context, events.Event) error {
				calls.Add(1)
				return nil
			})
		}

		Expect(bus.Publish(context.Background(), event("leave.decided"))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("keeps handler failures and panics away from the publisher", func() {
		var survived atomic.Bool
		bus.Subscribe("employee.registered", func(context.Context, events.Event) error {
			return errors.New("smtp down")
		})
		bus.Subscribe("employee.registered", func(context.Context, events.Event) error {
			panic("template missing")
		})
		bus.Subscribe("employee.registered", func(context.Context, events.Event) error {
			survived.Store(true)
			return nil
		})

		Expect(bus.Publish(context.Background(), event("employee.registered"))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(survived.Load()).To(BeTrue())
	})

	It("runs handlers after the publishing context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		release := make(chan struct{})
		var cancelled atomic.Bool
		bus.Subscribe("leave.decided", func(hctx context.Context, _ events.Event) error {
			<-release
			cancelled.Store(hctx.Err() != nil)
			return nil
		})

		Expect(bus.Publish(ctx, event("leave.decided"))).To(Succeed())
		cancel()
		close(release)
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(cancelled.Load()).To(BeFalse())
	})

	It("ignores events nobody subscribed to", func() {
		Expect(bus.Publish(context.Background(), event("unknown"))).To(Succeed())
		Expect(bus.Wait(context.Background())).To(Succeed())
	})
})
