package profiler

import (
	"context"
	"encoding/json"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tracelab/optrace/propagation"
)

var _ = Describe("Session registry", func() {
	It("lists live sessions until they stop", func() {
		before := len(Sessions())

		ctx, _ := Start(context.Background(), Config{Mode: ModeCPU})
		Mark(ctx, "checkpoint")

		infos := Sessions()
		Expect(infos).To(HaveLen(before + 1))

		info := infos[len(infos)-1]
		Expect(info.ID).ToNot(BeEmpty())
		Expect(info.Mode).To(Equal("cpu"))
		Expect(info.Flows).To(Equal(1))
		Expect(info.Events).To(BeNumerically(">=", 2))

		_, err := Stop(ctx)
		Expect(err).ToNot(HaveOccurred())

		Expect(Sessions()).To(HaveLen(before))
	})

	It("exposes session state for serialization", func() {
		ctx, _ := Start(context.Background(), Config{Mode: ModeCPU})
		Mark(ctx, "checkpoint")

		infos := Sessions()
		id := infos[len(infos)-1].ID

		state, ok := SessionState(id)
		Expect(ok).To(BeTrue())

		detail, isDetail := state.(SessionDetail)
		Expect(isDetail).To(BeTrue())
		Expect(detail.ID).To(Equal(id))
		Expect(detail.FlowCounts).To(HaveLen(1))
		Expect(detail.FlowCounts[0].Events).To(Equal(detail.Events))

		_, err := Stop(ctx)
		Expect(err).ToNot(HaveOccurred())

		_, ok = SessionState(id)
		Expect(ok).To(BeFalse())
	})

	It("serializes a snapshot while flows keep recording", func() {
		ctx, _ := Start(context.Background(), Config{Mode: ModeCPU})

		infos := Sessions()
		id := infos[len(infos)-1].ID

		stop := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			captured := propagation.Capture(ctx)
			for {
				select {
				case <-stop:
					return
				default:
				}

				fctx, release := captured.Install(context.Background())
				Mark(fctx, "tick")
				release()
			}
		}()

		// Each snapshot races a fresh flow binding its list.
		for i := 0; i < 200; i++ {
			state, ok := SessionState(id)
			Expect(ok).To(BeTrue())

			detail, isDetail := state.(SessionDetail)
			Expect(isDetail).To(BeTrue())

			_, err := json.Marshal(detail)
			Expect(err).ToNot(HaveOccurred())
		}

		close(stop)
		wg.Wait()

		_, err := Stop(ctx)
		Expect(err).ToNot(HaveOccurred())
	})

	It("does not list inert disabled sessions", func() {
		before := len(Sessions())

		_, err := Start(context.Background(), Config{Mode: ModeDisabled})
		Expect(err).ToNot(HaveOccurred())

		Expect(Sessions()).To(HaveLen(before))
	})
})
