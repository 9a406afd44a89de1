package txretry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/core/common/txretry"
)

func TestTxRetry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TxRetry Suite")
}

var _ = Describe("Do", func() {
	var ctx context.Context

	never := func(error) bool { return false }

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("runs the closure once on success", func() {
		calls := 0
		err := txretry.Do(ctx, never, func(ctx context.Context) error {
			calls++
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("passes a non-transient failure through unchanged", func() {
		err := txretry.Do(ctx, never, func(ctx context.Context) error {
			return internal.ErrInsufficientBalance
		})
		Expect(err).To(MatchError(internal.ErrInsufficientBalance))
	})

	It("replays a transient failure until it clears", func() {
		serialization := errors.New("pq: could not serialize access")
		calls := 0
		err := txretry.Do(ctx, func(err error) bool { return errors.Is(err, serialization) }, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return serialization
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(3))
	})

	It("maps exhausted replays to the concurrent-modification error", func() {
		serialization := errors.New("pq: deadlock detected")
		calls := 0
		err := txretry.Do(ctx, func(error) bool { return true }, func(ctx context.Context) error {
			calls++
			return serialization
		})
		Expect(err).To(MatchError(internal.ErrConcurrentModification))
		Expect(calls).To(Equal(4))
	})

	It("bounds every attempt with a transaction deadline", func() {
		var deadline time.Time
		var ok bool
		err := txretry.Do(ctx, never, func(ctx context.Context) error {
			deadline, ok = ctx.Deadline()
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically("<=", 5*time.Second))
	})

	It("maps an overrun transaction to the timeout error", func() {
		err := txretry.Do(ctx, never, func(ctx context.Context) error {
			return context.DeadlineExceeded
		})

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeTimeout))
	})
})
