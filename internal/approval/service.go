package approval

import (
	"context"
	"log/slog"
	"time"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/calendar"
	"github.com/danekja/ymanager/internal/core/common/txretry"
	"github.com/danekja/ymanager/internal/user"
)

const balanceEpsilon = 1e-9

// timeOffKinds are the entry kinds that go through the approval workflow.
// Sick days are auto-accepted and never show up here.
var timeOffKinds = []calendar.Kind{calendar.KindVacation, calendar.KindOvertime}

// PolicyStore is the slice of the policy store the approval service needs.
type PolicyStore interface {
	EnsureForRole(ctx context.Context, userID int64, role user.Role) error
	PolicyFor(ctx context.Context, userID int64) (vacationDays, overtimeBudget float64, leadTime time.Duration, err error)
}

// Guard is the slice of the authorization matrix consulted for decisions.
type Guard interface {
	MayDecideTimeOff(actor, target *user.User) bool
	MayDecideAuthorization(actor *user.User) bool
}

type Service struct {
	entries  calendar.Repository
	users    user.Repository
	policies PolicyStore
	guard    Guard
	ledger   calendar.Ledger
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(entries calendar.Repository, users user.Repository, policies PolicyStore, guard Guard, ledger calendar.Ledger, logger *slog.Logger) *Service {
	return &Service{
		entries:  entries,
		users:    users,
		policies: policies,
		guard:    guard,
		ledger:   ledger,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListTimeOffRequests returns vacation and overtime entries visible to the
// actor: an admin sees every user's requests, a supervisor only their
// subordinates'.
func (s *Service) ListTimeOffRequests(ctx context.Context, actor *user.User, status *internal.Status) ([]*TimeOffRequestDTO, error) {
	if actor == nil || !actor.IsAccepted() {
		return nil, internal.ErrUnauthorizedActor
	}

	entries, err := s.entries.ListByKinds(ctx, timeOffKinds, status)
	if err != nil {
		s.logger.Error("failed to list time-off requests", "error", err)
		return nil, err
	}

	owners := make(map[int64]*user.User)
	result := make([]*TimeOffRequestDTO, 0, len(entries))
	for _, e := range entries {
		owner, ok := owners[e.OwnerID]
		if !ok {
			owner, err = s.users.GetByID(ctx, e.OwnerID)
			if err != nil {
				return nil, err
			}
			owners[e.OwnerID] = owner
		}
		if !actor.IsAdmin() && !actor.IsSupervisorOf(owner) && actor.ID != owner.ID {
			continue
		}
		result = append(result, toTimeOffDTO(e, owner))
	}
	return result, nil
}

// ListAuthorizationRequests returns users by account status, admin only.
func (s *Service) ListAuthorizationRequests(ctx context.Context, actor *user.User, status *internal.Status) ([]*AuthorizationRequestDTO, error) {
	if !s.guard.MayDecideAuthorization(actor) {
		return nil, internal.ErrUnauthorizedActor
	}

	users, err := s.users.List(ctx, status)
	if err != nil {
		s.logger.Error("failed to list authorization requests", "error", err)
		return nil, err
	}

	result := make([]*AuthorizationRequestDTO, len(users))
	for i, u := range users {
		result[i] = toAuthorizationDTO(u)
	}
	return result, nil
}

// DecideTimeOff accepts or rejects a pending entry, or revokes an accepted
// one. Re-issuing the decision the entry already carries is a no-op.
func (s *Service) DecideTimeOff(ctx context.Context, actor *user.User, entryID int64, newStatus internal.Status) error {
	if newStatus != internal.StatusAccepted && newStatus != internal.StatusRejected {
		return internal.ErrIllegalStatusTransition
	}

	existing, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	owner, err := s.users.GetByID(ctx, existing.OwnerID)
	if err != nil {
		return err
	}
	if !s.guard.MayDecideTimeOff(actor, owner) {
		s.logger.Warn("time-off decision denied",
			"actor_id", actor.ID,
			"entry_id", entryID,
			"owner_id", owner.ID)
		return internal.ErrUnauthorizedActor
	}

	vacationTotal, overtimeBudget, _, err := s.policies.PolicyFor(ctx, owner.ID)
	if err != nil {
		return err
	}

	err = txretry.Do(ctx, s.entries.IsSerializationFailure, func(ctx context.Context) error {
		return s.entries.InTx(ctx, owner.ID, func(tx calendar.Repository) error {
			entry, err := tx.GetByID(ctx, entryID)
			if err != nil {
				return err
			}
			if entry.Status == newStatus {
				return nil
			}
			if !entry.CanTransitionTo(newStatus) {
				return internal.ErrIllegalStatusTransition
			}

			if newStatus == internal.StatusAccepted {
				// the policy may have shrunk since the entry was created
				if err := s.recheckBalance(ctx, tx, entry, vacationTotal, overtimeBudget); err != nil {
					return err
				}
			}

			entry.Status = newStatus
			entry.ApproverID = &actor.ID
			entry.StatusChangedAt = s.now()
			return tx.Update(ctx, entry)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("time-off request decided",
		"entry_id", entryID,
		"owner_id", owner.ID,
		"approver_id", actor.ID,
		"status", newStatus)
	return nil
}

// DecideAuthorization accepts or rejects a pending account, admin only. On
// acceptance the user's policy is finalized from the role's defaults unless
// one was already set. An admin may also push an account back to PENDING.
func (s *Service) DecideAuthorization(ctx context.Context, actor *user.User, userID int64, newStatus internal.Status, role user.Role) error {
	if !newStatus.Valid() {
		return internal.ErrIllegalStatusTransition
	}
	if !s.guard.MayDecideAuthorization(actor) {
		s.logger.Warn("authorization decision denied", "actor_id", actor.ID, "target_id", userID)
		return internal.ErrUnauthorizedActor
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target.AccountStatus == newStatus && (role == "" || role == target.Role) {
		return nil
	}

	if role != "" {
		target.Role = role
	}
	target.AccountStatus = newStatus
	if err := s.users.Update(ctx, target); err != nil {
		s.logger.Error("failed to update account status", "error", err, "user_id", userID)
		return err
	}

	if newStatus == internal.StatusAccepted {
		if err := s.policies.EnsureForRole(ctx, userID, target.Role); err != nil {
			return err
		}
	}

	s.logger.Info("authorization request decided",
		"user_id", userID,
		"approver_id", actor.ID,
		"status", newStatus,
		"role", target.Role)
	return nil
}

// recheckBalance re-runs the ledger over the owner's active entries. The
// entry being accepted is already among them, so its reservation counts
// exactly once.
func (s *Service) recheckBalance(ctx context.Context, tx calendar.Repository, entry *calendar.Entry, vacationTotal, overtimeBudget float64) error {
	entries, err := tx.ListActiveByOwner(ctx, entry.OwnerID)
	if err != nil {
		return err
	}

	switch entry.Kind {
	case calendar.KindVacation:
		if s.ledger.RemainingVacation(vacationTotal, entries, nil) < -balanceEpsilon {
			return internal.ErrInsufficientBalance
		}
	case calendar.KindOvertime:
		if s.ledger.OvertimeReserved(entries) > overtimeBudget+balanceEpsilon {
			return internal.ErrInsufficientBalance
		}
	}
	return nil
}
