package user_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/authz"
	"github.com/danekja/ymanager/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users       map[int64]*user.User
	nextID      int64
	createError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*user.User), nextID: 1}
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepository) GetBySubject(ctx context.Context, subject string) (*user.User, error) {
	for _, u := range m.users {
		if u.ExternalSubject == subject {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.createError != nil {
		return m.createError
	}
	for _, x := range m.users {
		if x.ExternalSubject == u.ExternalSubject {
			return user.ErrDuplicateSubject
		}
	}
	u.ID = m.nextID
	m.nextID++
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, u *user.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *mockUserRepository) List(ctx context.Context, status *internal.Status) ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		if status != nil && u.AccountStatus != *status {
			continue
		}
		clone := *u
		result = append(result, &clone)
	}
	return result, nil
}

// Mock policy provider recording snapshots
type mockPolicyProvider struct {
	vacationDays   float64
	overtimeBudget float64
	leadTime       time.Duration
	ensured        map[int64]user.Role
	ensureError    error
}

func (m *mockPolicyProvider) EnsureForRole(ctx context.Context, userID int64, role user.Role) error {
	if m.ensureError != nil {
		return m.ensureError
	}
	m.ensured[userID] = role
	return nil
}

func (m *mockPolicyProvider) PolicyFor(ctx context.Context, userID int64) (float64, float64, time.Duration, error) {
	return m.vacationDays, m.overtimeBudget, m.leadTime, nil
}

// Mock balance provider with fixed figures
type mockBalanceProvider struct {
	remaining float64
	taken     float64
	budget    float64
}

func (m *mockBalanceProvider) RemainingVacation(ctx context.Context, userID int64) (float64, error) {
	return m.remaining, nil
}

func (m *mockBalanceProvider) OvertimePosition(ctx context.Context, userID int64) (float64, float64, error) {
	return m.taken, m.budget, nil
}

var _ = Describe("UserService", func() {
	var (
		service  *user.Service
		repo     *mockUserRepository
		policies *mockPolicyProvider
		balances *mockBalanceProvider
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockUserRepository()
		policies = &mockPolicyProvider{vacationDays: 20, overtimeBudget: 10, leadTime: 48 * time.Hour, ensured: make(map[int64]user.Role)}
		balances = &mockBalanceProvider{remaining: 17.5, taken: 4, budget: 10}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, policies, balances, authz.NewGuard(), logger)
	})

	Describe("ResolveSubject", func() {
		It("creates a pending employee on first sight and snapshots the default policy", func() {
			u, err := service.ResolveSubject(ctx, "sub-1", "jan@example.com", "Jan Novak")

			Expect(err).ToNot(HaveOccurred())
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.Role).To(Equal(user.RoleEmployee))
			Expect(u.AccountStatus).To(Equal(internal.StatusPending))
			Expect(policies.ensured).To(HaveKeyWithValue(u.ID, user.RoleEmployee))
		})

		It("returns the same user for repeated calls", func() {
			first, err := service.ResolveSubject(ctx, "sub-1", "jan@example.com", "Jan Novak")
			Expect(err).ToNot(HaveOccurred())

			second, err := service.ResolveSubject(ctx, "sub-1", "jan@example.com", "Jan Novak")
			Expect(err).ToNot(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(repo.users).To(HaveLen(1))
		})

		It("rejects tokens with an incomplete profile", func() {
			_, err := service.ResolveSubject(ctx, "sub-1", "", "Jan Novak")
			Expect(err).To(MatchError(internal.ErrIdentityIncomplete))

			_, err = service.ResolveSubject(ctx, "sub-1", "jan@example.com", "")
			Expect(err).To(MatchError(internal.ErrIdentityIncomplete))
		})

		It("re-reads the winner's row after losing the first-sight race", func() {
			winner := &user.User{ExternalSubject: "sub-1", Email: "jan@example.com", Name: "Jan Novak", Role: user.RoleEmployee, AccountStatus: internal.StatusPending}
			Expect(repo.Create(ctx, winner)).To(Succeed())

			u, err := service.ResolveSubject(ctx, "sub-1", "jan@example.com", "Jan Novak")
			Expect(err).ToNot(HaveOccurred())
			Expect(u.ID).To(Equal(winner.ID))
		})
	})

	Describe("ListUsers", func() {
		var admin *user.User

		BeforeEach(func() {
			admin = &user.User{ExternalSubject: "sub-a", Email: "a@example.com", Name: "Admin", Role: user.RoleAdmin, AccountStatus: internal.StatusAccepted}
			Expect(repo.Create(ctx, admin)).To(Succeed())
			pending := &user.User{ExternalSubject: "sub-b", Email: "b@example.com", Name: "Applicant", Role: user.RoleEmployee, AccountStatus: internal.StatusPending}
			Expect(repo.Create(ctx, pending)).To(Succeed())
		})

		It("projects each user with their remaining vacation", func() {
			result, err := service.ListUsers(ctx, admin, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(2))
			Expect(result[0].RemainingVacation).To(Equal(17.5))
		})

		It("filters by account status", func() {
			pending := internal.StatusPending
			result, err := service.ListUsers(ctx, admin, &pending)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))
			Expect(result[0].Name).To(Equal("Applicant"))
		})

		It("denies a pending actor", func() {
			applicant, err := repo.GetByEmail(ctx, "b@example.com")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ListUsers(ctx, applicant, nil)
			Expect(err).To(MatchError(internal.ErrUnauthorizedActor))
		})
	})

	Describe("Profile", func() {
		var target *user.User

		BeforeEach(func() {
			target = &user.User{ExternalSubject: "sub-t", Email: "t@example.com", Name: "Target", Role: user.RoleEmployee, AccountStatus: internal.StatusAccepted}
			Expect(repo.Create(ctx, target)).To(Succeed())
		})

		It("combines the policy snapshot with ledger balances", func() {
			profile, err := service.Profile(ctx, target, target.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(profile.VacationDaysTotal).To(Equal(20.0))
			Expect(profile.RemainingVacation).To(Equal(17.5))
			Expect(profile.OvertimeHoursTaken).To(Equal(4.0))
			Expect(profile.OvertimeHoursBudget).To(Equal(10.0))
			Expect(profile.NotificationLeadTimeDays).To(Equal(2.0))
		})

		It("denies reading an unrelated profile", func() {
			stranger := &user.User{ExternalSubject: "sub-s", Email: "s@example.com", Name: "Stranger", Role: user.RoleEmployee, AccountStatus: internal.StatusAccepted}
			Expect(repo.Create(ctx, stranger)).To(Succeed())

			_, err := service.Profile(ctx, stranger, target.ID)
			Expect(err).To(MatchError(internal.ErrUnauthorizedActor))
		})

		It("maps an unknown target to not found", func() {
			_, err := service.Profile(ctx, target, 999)
			Expect(err).To(MatchError(user.ErrUserNotFound))
		})
	})
})
