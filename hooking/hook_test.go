package hooking

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type shapedValue []int64

func (v shapedValue) Dims() ([]int64, bool) {
	return v, true
}

var _ = Describe("Registry", func() {
	AfterEach(func() {
		RemoveKind(KindObserver)
		RemoveKind(KindProfiler)
	})

	It("should panic when a callback has neither enter nor exit", func() {
		Expect(func() {
			Register(Callback{Kind: KindObserver})
		}).To(Panic())
	})

	It("should report inactive while empty", func() {
		Expect(Active()).To(BeFalse())

		Register(Callback{
			Enter: func(*Record) bool { return true },
			Kind:  KindObserver,
		})
		Expect(Active()).To(BeTrue())

		RemoveKind(KindObserver)
		Expect(Active()).To(BeFalse())
	})

	It("should remove only the named kind", func() {
		profilerCalls := 0
		observerCalls := 0

		Register(Callback{
			Enter: func(*Record) bool { profilerCalls++; return true },
			Kind:  KindProfiler,
		})
		Register(Callback{
			Enter: func(*Record) bool { observerCalls++; return true },
			Kind:  KindObserver,
		})

		RemoveKind(KindProfiler)

		span := Begin(context.Background(), "op", ScopeFunction, NoSeq, nil)
		span.End()

		Expect(profilerCalls).To(Equal(0))
		Expect(observerCalls).To(Equal(1))
	})

	It("should reject more callbacks than the registry can track", func() {
		for i := 0; i < maxCallbacks; i++ {
			Register(Callback{
				Enter: func(*Record) bool { return true },
				Kind:  KindObserver,
			})
		}

		Expect(func() {
			Register(Callback{
				Enter: func(*Record) bool { return true },
				Kind:  KindObserver,
			})
		}).To(Panic())
	})
})

var _ = Describe("Dispatch", func() {
	var (
		enters []string
		exits  []string
	)

	BeforeEach(func() {
		enters = nil
		exits = nil
	})

	AfterEach(func() {
		RemoveKind(KindObserver)
		RemoveKind(KindProfiler)
	})

	record := func(name string, admit bool) {
		Register(Callback{
			Enter: func(rec *Record) bool {
				enters = append(enters, name+":"+rec.Name)
				return admit
			},
			Exit: func(rec *Record) {
				exits = append(exits, name+":"+rec.Name)
			},
			Kind: KindObserver,
		})
	}

	It("should pair enter and exit around an operation", func() {
		record("cb", true)

		span := Begin(context.Background(), "op", ScopeFunction, NoSeq, nil)
		Expect(enters).To(Equal([]string{"cb:op"}))
		Expect(exits).To(BeEmpty())

		span.End()
		Expect(exits).To(Equal([]string{"cb:op"}))
	})

	It("should skip the exit of a callback whose enter declined", func() {
		record("yes", true)
		record("no", false)

		span := Begin(context.Background(), "op", ScopeFunction, NoSeq, nil)
		span.End()

		Expect(enters).To(ConsistOf("yes:op", "no:op"))
		Expect(exits).To(Equal([]string{"yes:op"}))
	})

	It("should not run exits twice", func() {
		record("cb", true)

		span := Begin(context.Background(), "op", ScopeFunction, NoSeq, nil)
		span.End()
		span.End()

		Expect(exits).To(HaveLen(1))
	})

	It("should do nothing on a zero span", func() {
		span := Span{}
		Expect(func() { span.End() }).NotTo(Panic())
	})

	It("should filter call sites by scope", func() {
		Register(Callback{
			Enter: func(rec *Record) bool {
				enters = append(enters, rec.Name)
				return true
			},
			Kind:   KindObserver,
			Scopes: []Scope{ScopeUser},
		})

		span := Begin(context.Background(), "framework-op", ScopeFunction, NoSeq, nil)
		span.End()
		Expect(enters).To(BeEmpty())

		span = Begin(context.Background(), "user-range", ScopeUser, NoSeq, nil)
		span.End()
		Expect(enters).To(Equal([]string{"user-range"}))
	})

	It("should run an exit-only callback", func() {
		Register(Callback{
			Exit: func(rec *Record) {
				exits = append(exits, rec.Name)
			},
			Kind: KindObserver,
		})

		span := Begin(context.Background(), "op", ScopeFunction, NoSeq, nil)
		span.End()

		Expect(exits).To(Equal([]string{"op"}))
	})
})

var _ = Describe("Inputs", func() {
	AfterEach(func() {
		RemoveKind(KindObserver)
	})

	It("should report whether descriptors are wanted", func() {
		Expect(InputsNeeded()).To(BeFalse())

		Register(Callback{
			Enter:       func(*Record) bool { return true },
			Kind:        KindObserver,
			NeedsInputs: true,
		})

		Expect(InputsNeeded()).To(BeTrue())
	})

	It("should hand descriptors to the callbacks that want them", func() {
		var seen []Value

		Register(Callback{
			Enter: func(rec *Record) bool {
				seen = rec.Inputs
				return true
			},
			Kind:        KindObserver,
			NeedsInputs: true,
		})

		inputs := []Value{shapedValue{2, 3}}
		span := Begin(context.Background(), "op", ScopeFunction, NoSeq, inputs)
		span.End()

		Expect(seen).To(HaveLen(1))
		dims, ok := seen[0].Dims()
		Expect(ok).To(BeTrue())
		Expect(dims).To(Equal([]int64{2, 3}))
	})

	It("should strip descriptors when nobody wants them", func() {
		var seen []Value
		sawInputs := false

		Register(Callback{
			Enter: func(rec *Record) bool {
				seen = rec.Inputs
				sawInputs = true
				return true
			},
			Kind: KindObserver,
		})

		span := Begin(context.Background(), "op", ScopeFunction, NoSeq,
			[]Value{shapedValue{4}})
		span.End()

		Expect(sawInputs).To(BeTrue())
		Expect(seen).To(BeNil())
	})
})
