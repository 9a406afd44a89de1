package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danekja/ymanager/internal"
)

var (
	ErrUserNotFound = internal.NewNotFoundError("user not found")

	// ErrDuplicateSubject is returned by Repository.Create when the unique
	// constraint on external_subject fires. The registration race loser
	// retries the read path.
	ErrDuplicateSubject = errors.New("duplicate external subject")
)

// Repository defines the data access methods for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetBySubject(ctx context.Context, subject string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, status *internal.Status) ([]*User, error)
}

// PolicyProvider is the slice of the policy store the user service needs:
// snapshotting role defaults at registration and reading the per-user policy
// for profile projections.
type PolicyProvider interface {
	EnsureForRole(ctx context.Context, userID int64, role Role) error
	PolicyFor(ctx context.Context, userID int64) (vacationDays, overtimeBudget float64, leadTime time.Duration, err error)
}

// BalanceProvider exposes the ledger-derived balances.
type BalanceProvider interface {
	RemainingVacation(ctx context.Context, userID int64) (float64, error)
	OvertimePosition(ctx context.Context, userID int64) (taken, budget float64, err error)
}

// Guard is the slice of the authorization matrix consulted for reads.
type Guard interface {
	MayReadProfile(actor, target *User) bool
}

type Service struct {
	repo     Repository
	policies PolicyProvider
	balances BalanceProvider
	guard    Guard
	logger   *slog.Logger
}

func NewService(repo Repository, policies PolicyProvider, balances BalanceProvider, guard Guard, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		policies: policies,
		balances: balances,
		guard:    guard,
		logger:   logger,
	}
}

// ResolveSubject maps an authenticated external subject to the internal user,
// creating the account on first sight. Repeated calls with the same subject
// are idempotent.
func (s *Service) ResolveSubject(ctx context.Context, subject, email, name string) (*User, error) {
	if email == "" || name == "" {
		s.logger.Warn("identity profile incomplete", "subject", subject)
		return nil, internal.ErrIdentityIncomplete
	}

	existing, err := s.repo.GetBySubject(ctx, subject)
	if err == nil {
		return existing, nil
	}
	if appErr, ok := internal.IsAppError(err); !ok || appErr.Code != internal.ErrCodeNotFound {
		s.logger.Error("failed to look up subject", "error", err, "subject", subject)
		return nil, err
	}

	u := &User{
		ExternalSubject: subject,
		Email:           email,
		Name:            name,
		Role:            RoleEmployee,
		AccountStatus:   internal.StatusPending,
		CreatedAt:       time.Now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateSubject) {
			// lost the first-sight race, the winner's row is authoritative
			return s.repo.GetBySubject(ctx, subject)
		}
		s.logger.Error("failed to create user", "error", err, "subject", subject)
		return nil, err
	}

	if err := s.policies.EnsureForRole(ctx, u.ID, RoleEmployee); err != nil {
		s.logger.Error("failed to snapshot default policy", "error", err, "user_id", u.ID)
		return nil, err
	}

	s.logger.Info("registered new user", "user_id", u.ID, "email", email)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns the BasicProfileUser projection, optionally filtered by
// account status.
func (s *Service) ListUsers(ctx context.Context, actor *User, status *internal.Status) ([]*BasicProfileUser, error) {
	if actor == nil || !actor.IsAccepted() {
		return nil, internal.ErrUnauthorizedActor
	}

	users, err := s.repo.List(ctx, status)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	result := make([]*BasicProfileUser, 0, len(users))
	for _, u := range users {
		remaining, err := s.balances.RemainingVacation(ctx, u.ID)
		if err != nil {
			s.logger.Error("failed to compute remaining vacation", "error", err, "user_id", u.ID)
			return nil, err
		}
		result = append(result, &BasicProfileUser{
			ID:                u.ID,
			Name:              u.Name,
			Email:             u.Email,
			Role:              u.Role,
			Status:            u.AccountStatus,
			RemainingVacation: remaining,
		})
	}
	return result, nil
}

// Profile assembles the FullUserProfile projection, enforcing the read rule
// of the authorization matrix.
func (s *Service) Profile(ctx context.Context, actor *User, targetID int64) (*FullUserProfile, error) {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !s.guard.MayReadProfile(actor, target) {
		s.logger.Warn("profile read denied", "actor_id", actor.ID, "target_id", targetID)
		return nil, internal.ErrUnauthorizedActor
	}

	vacationTotal, overtimeBudget, leadTime, err := s.policies.PolicyFor(ctx, targetID)
	if err != nil {
		return nil, err
	}
	remaining, err := s.balances.RemainingVacation(ctx, targetID)
	if err != nil {
		return nil, err
	}
	taken, _, err := s.balances.OvertimePosition(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return &FullUserProfile{
		ID:                       target.ID,
		Name:                     target.Name,
		Email:                    target.Email,
		Role:                     target.Role,
		Status:                   target.AccountStatus,
		SupervisorID:             target.SupervisorID,
		VacationDaysTotal:        vacationTotal,
		RemainingVacation:        remaining,
		OvertimeHoursTaken:       taken,
		OvertimeHoursBudget:      overtimeBudget,
		NotificationLeadTimeDays: leadTime.Hours() / 24,
	}, nil
}
