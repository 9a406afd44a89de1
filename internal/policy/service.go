package policy

import (
	"context"
	"log/slog"
	"time"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/user"
)

var (
	ErrPolicyNotFound   = internal.NewNotFoundError("user policy not found")
	ErrDefaultsNotFound = internal.NewNotFoundError("default settings not found for role")
)

// Repository defines the data access methods for policies and role defaults.
type Repository interface {
	GetDefaults(ctx context.Context) ([]*Defaults, error)
	GetDefaultsForRole(ctx context.Context, role user.Role) (*Defaults, error)
	UpsertDefaults(ctx context.Context, d *Defaults) error
	GetByUserID(ctx context.Context, userID int64) (*Policy, error)
	Save(ctx context.Context, p *Policy) error
}

// UserReader resolves target users for guard checks.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Guard is the slice of the authorization matrix the policy store consults.
type Guard interface {
	MayReadProfile(actor, target *user.User) bool
	MayChangePolicy(actor, target *user.User) bool
	MayChangeDefaults(actor *user.User) bool
}

type Service struct {
	repo   Repository
	users  UserReader
	guard  Guard
	logger *slog.Logger
}

func NewService(repo Repository, users UserReader, guard Guard, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		guard:  guard,
		logger: logger,
	}
}

// GetDefaults returns the per-role policy templates.
func (s *Service) GetDefaults(ctx context.Context, actor *user.User) ([]*Defaults, error) {
	if actor == nil || !actor.IsAccepted() {
		return nil, internal.ErrUnauthorizedActor
	}
	return s.repo.GetDefaults(ctx)
}

// SetDefaults replaces the template for one role. Existing user policies are
// left untouched; the template only applies to users accepted afterwards.
func (s *Service) SetDefaults(ctx context.Context, actor *user.User, d *Defaults) error {
	if !s.guard.MayChangeDefaults(actor) {
		s.logger.Warn("set defaults denied", "actor_id", actorID(actor), "role", d.Role)
		return internal.ErrUnauthorizedActor
	}
	if err := d.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpsertDefaults(ctx, d); err != nil {
		s.logger.Error("failed to upsert defaults", "error", err, "role", d.Role)
		return err
	}

	s.logger.Info("default settings changed",
		"actor_id", actor.ID,
		"role", d.Role,
		"vacation_days", d.VacationDaysTotal,
		"overtime_hours", d.OvertimeHoursBudget)
	return nil
}

func (s *Service) GetUserPolicy(ctx context.Context, actor *user.User, userID int64) (*Policy, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.guard.MayReadProfile(actor, target) {
		return nil, internal.ErrUnauthorizedActor
	}
	return s.repo.GetByUserID(ctx, userID)
}

// SetUserPolicy replaces the target user's policy snapshot.
func (s *Service) SetUserPolicy(ctx context.Context, actor *user.User, p *Policy) error {
	target, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !s.guard.MayChangePolicy(actor, target) {
		s.logger.Warn("set user policy denied", "actor_id", actorID(actor), "target_id", p.UserID)
		return internal.ErrUnauthorizedActor
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to save user policy", "error", err, "user_id", p.UserID)
		return err
	}

	s.logger.Info("user policy changed",
		"actor_id", actor.ID,
		"user_id", p.UserID,
		"vacation_days", p.VacationDaysTotal,
		"overtime_hours", p.OvertimeHoursBudget)
	return nil
}

// EnsureForRole snapshots the role's defaults into a per-user policy if the
// user does not have one yet. Used at registration and on authorization
// acceptance.
func (s *Service) EnsureForRole(ctx context.Context, userID int64, role user.Role) error {
	_, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if appErr, ok := internal.IsAppError(err); !ok || appErr.Code != internal.ErrCodeNotFound {
		return err
	}

	defaults, err := s.repo.GetDefaultsForRole(ctx, role)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeNotFound {
			// no template seeded for the role, start from an empty snapshot
			defaults = &Defaults{Role: role}
		} else {
			return err
		}
	}

	if err := s.repo.Save(ctx, defaults.toPolicy(userID)); err != nil {
		s.logger.Error("failed to snapshot policy", "error", err, "user_id", userID, "role", role)
		return err
	}
	return nil
}

// PolicyFor is the unguarded read used by the ledger and profile assembly.
func (s *Service) PolicyFor(ctx context.Context, userID int64) (vacationDays, overtimeBudget float64, leadTime time.Duration, err error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}
	return p.VacationDaysTotal, p.OvertimeHoursBudget, p.NotificationLeadTime, nil
}

func actorID(actor *user.User) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
