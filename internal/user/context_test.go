package user_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/user"
)

var _ = Describe("Actor context", func() {
	It("round-trips the acting user", func() {
		actor := &user.User{ID: 7, Role: user.RoleManager, AccountStatus: internal.StatusAccepted}

		ctx := user.NewContext(context.Background(), actor)
		got, ok := user.FromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(actor))
	})

	It("reports an absent actor", func() {
		_, ok := user.FromContext(context.Background())
		Expect(ok).To(BeFalse())

		_, ok = user.FromContext(nil)
		Expect(ok).To(BeFalse())
	})
})
