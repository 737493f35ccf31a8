package propagation

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Slot", func() {
	var (
		ctx  context.Context
		slot Slot[string]
	)

	BeforeEach(func() {
		ctx = context.Background()
		slot = NewSlot[string]("test-slot")
	})

	It("should panic if the slot name is empty", func() {
		Expect(func() {
			NewSlot[int]("")
		}).To(Panic())
	})

	It("should return nothing before a push", func() {
		_, ok := slot.Get(ctx)
		Expect(ok).To(BeFalse())
	})

	It("should return the pushed value", func() {
		ctx = slot.Push(ctx, "value")

		v, ok := slot.Get(ctx)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("value"))
	})

	It("should shadow the outer value until popped", func() {
		ctx = slot.Push(ctx, "outer")
		ctx = slot.Push(ctx, "inner")

		v, _ := slot.Get(ctx)
		Expect(v).To(Equal("inner"))

		ctx, popped := slot.Pop(ctx)
		Expect(popped).To(Equal("inner"))

		v, ok := slot.Get(ctx)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("outer"))
	})

	It("should empty the slot after the last pop", func() {
		ctx = slot.Push(ctx, "only")

		ctx, popped := slot.Pop(ctx)
		Expect(popped).To(Equal("only"))

		_, ok := slot.Get(ctx)
		Expect(ok).To(BeFalse())
	})

	It("should panic when popping an empty slot", func() {
		Expect(func() {
			slot.Pop(ctx)
		}).To(Panic())

		ctx = slot.Push(ctx, "value")
		ctx, _ = slot.Pop(ctx)

		popped := ctx
		Expect(func() {
			slot.Pop(popped)
		}).To(Panic())
	})

	It("should not modify the original context on push", func() {
		before := ctx
		_ = slot.Push(ctx, "value")

		_, ok := slot.Get(before)
		Expect(ok).To(BeFalse())
	})

	It("should keep slots of the same name separate", func() {
		other := NewSlot[string]("test-slot")

		ctx = slot.Push(ctx, "mine")

		_, ok := other.Get(ctx)
		Expect(ok).To(BeFalse())
	})

	It("should keep differently typed slots separate", func() {
		numbers := NewSlot[int]("numbers")

		ctx = slot.Push(ctx, "text")
		ctx = numbers.Push(ctx, 42)

		s, _ := slot.Get(ctx)
		n, _ := numbers.Get(ctx)
		Expect(s).To(Equal("text"))
		Expect(n).To(Equal(42))
	})
})

var _ = Describe("FlowID", func() {
	It("should be zero without a store", func() {
		Expect(FlowID(context.Background())).To(Equal(uint64(0)))
	})

	It("should stay stable across pushes on one flow", func() {
		slot := NewSlot[int]("flow-stable")

		ctx := slot.Push(context.Background(), 1)
		first := FlowID(ctx)
		Expect(first).NotTo(Equal(uint64(0)))

		ctx = slot.Push(ctx, 2)
		Expect(FlowID(ctx)).To(Equal(first))

		ctx, _ = slot.Pop(ctx)
		Expect(FlowID(ctx)).To(Equal(first))
	})

	It("should differ between independent flows", func() {
		slot := NewSlot[int]("flow-indep")

		a := slot.Push(context.Background(), 1)
		b := slot.Push(context.Background(), 1)

		Expect(FlowID(a)).NotTo(Equal(FlowID(b)))
	})
})
