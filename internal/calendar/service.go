package calendar

import (
	"context"
	"log/slog"
	"time"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/core/common/txretry"
	"github.com/danekja/ymanager/internal/user"
)

var ErrEntryNotFound = internal.NewNotFoundError("calendar entry not found")

// balanceEpsilon absorbs float noise in day-fraction sums.
const balanceEpsilon = 1e-9

// Repository defines the data access methods for calendar entries. InTx runs
// fn inside a serializable transaction holding an advisory lock keyed by the
// owner, so balance pre-checks cannot be invalidated by concurrent siblings.
type Repository interface {
	InTx(ctx context.Context, ownerID int64, fn func(Repository) error) error
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id int64) error
	ListWindow(ctx context.Context, ownerID int64, from, to time.Time, status *internal.Status) ([]*Entry, error)
	ListActiveOnDate(ctx context.Context, ownerID int64, date time.Time) ([]*Entry, error)
	ListActiveByOwner(ctx context.Context, ownerID int64) ([]*Entry, error)
	ListByKinds(ctx context.Context, kinds []Kind, status *internal.Status) ([]*Entry, error)
	IsSerializationFailure(err error) bool
}

// UserReader resolves owners for guard checks.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// PolicyReader supplies the owner's policy snapshot.
type PolicyReader interface {
	PolicyFor(ctx context.Context, userID int64) (vacationDays, overtimeBudget float64, leadTime time.Duration, err error)
}

// Guard is the slice of the authorization matrix the calendar consults.
type Guard interface {
	MayReadProfile(actor, target *user.User) bool
	MayWriteOwnEntry(actor, target *user.User) bool
	MayDecideTimeOff(actor, target *user.User) bool
}

type Service struct {
	repo     Repository
	users    UserReader
	policies PolicyReader
	guard    Guard
	ledger   Ledger
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo Repository, users UserReader, policies PolicyReader, guard Guard, ledger Ledger, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		users:    users,
		policies: policies,
		guard:    guard,
		ledger:   ledger,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateEntry validates and persists a new calendar entry. Owners create
// PENDING entries (sick days are auto-accepted); an approver may create an
// already-accepted entry on the owner's behalf.
func (s *Service) CreateEntry(ctx context.Context, actor *user.User, dto CreateEntryDTO) (*Entry, error) {
	entry, err := dto.ToEntry()
	if err != nil {
		return nil, err
	}

	ownerID := actor.ID
	if dto.UserID != nil {
		ownerID = *dto.UserID
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entry.OwnerID = owner.ID

	onBehalf := actor.ID != owner.ID
	if onBehalf {
		if !s.guard.MayDecideTimeOff(actor, owner) {
			s.logger.Warn("create entry denied", "actor_id", actor.ID, "owner_id", owner.ID)
			return nil, internal.ErrUnauthorizedActor
		}
		entry.Status = internal.StatusAccepted
		entry.ApproverID = &actor.ID
	} else {
		if !s.guard.MayWriteOwnEntry(actor, owner) {
			s.logger.Warn("create entry denied", "actor_id", actor.ID, "owner_id", owner.ID)
			return nil, internal.ErrUnauthorizedActor
		}
		entry.Status = internal.StatusPending
		if entry.Kind == KindSickDay {
			// sick days have no approval workflow
			entry.Status = internal.StatusAccepted
			entry.ApproverID = &owner.ID
		}
	}

	now := s.now()
	entry.CreatedAt = now
	entry.StatusChangedAt = now

	vacationTotal, overtimeBudget, leadTime, err := s.policies.PolicyFor(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	err = txretry.Do(ctx, s.repo.IsSerializationFailure, func(ctx context.Context) error {
		return s.repo.InTx(ctx, owner.ID, func(tx Repository) error {
			if err := s.validateDate(entry, leadTime); err != nil {
				return err
			}
			if err := s.validateWindow(entry); err != nil {
				return err
			}
			if err := s.checkOverlap(ctx, tx, entry, 0); err != nil {
				return err
			}
			if err := s.checkBalance(ctx, tx, entry, 0, vacationTotal, overtimeBudget); err != nil {
				return err
			}
			return tx.Create(ctx, entry)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("calendar entry created",
		"entry_id", entry.ID,
		"owner_id", owner.ID,
		"actor_id", actor.ID,
		"kind", entry.Kind,
		"date", FormatDate(entry.Date),
		"status", entry.Status)
	return entry, nil
}

// UpdateEntry replaces the date, window and hours of a PENDING entry. Only
// the owner of an accepted account may edit, and only while the entry is
// undecided.
func (s *Service) UpdateEntry(ctx context.Context, actor *user.User, dto UpdateEntryDTO) (*Entry, error) {
	existing, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return nil, err
	}

	vacationTotal, overtimeBudget, leadTime, err := s.policies.PolicyFor(ctx, existing.OwnerID)
	if err != nil {
		return nil, err
	}

	var updated *Entry
	err = txretry.Do(ctx, s.repo.IsSerializationFailure, func(ctx context.Context) error {
		return s.repo.InTx(ctx, existing.OwnerID, func(tx Repository) error {
			entry, err := tx.GetByID(ctx, dto.ID)
			if err != nil {
				return err
			}
			if entry.OwnerID != actor.ID || !s.guard.MayWriteOwnEntry(actor, actor) {
				return internal.ErrUnauthorizedActor
			}
			if entry.Status != internal.StatusPending {
				return internal.ErrIllegalStatusTransition
			}
			if err := dto.Apply(entry); err != nil {
				return err
			}
			if err := s.validateDate(entry, leadTime); err != nil {
				return err
			}
			if err := s.validateWindow(entry); err != nil {
				return err
			}
			if err := s.checkOverlap(ctx, tx, entry, entry.ID); err != nil {
				return err
			}
			if err := s.checkBalance(ctx, tx, entry, entry.ID, vacationTotal, overtimeBudget); err != nil {
				return err
			}
			updated = entry
			return tx.Update(ctx, entry)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("calendar entry updated",
		"entry_id", updated.ID,
		"owner_id", updated.OwnerID,
		"date", FormatDate(updated.Date))
	return updated, nil
}

// DeleteEntry removes a PENDING entry when the owner asks, which restores
// the reserved balance exactly. An approver deleting an entry instead
// transitions it to REJECTED, keeping the record.
func (s *Service) DeleteEntry(ctx context.Context, actor *user.User, entryID int64) error {
	existing, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	owner, err := s.users.GetByID(ctx, existing.OwnerID)
	if err != nil {
		return err
	}

	err = txretry.Do(ctx, s.repo.IsSerializationFailure, func(ctx context.Context) error {
		return s.repo.InTx(ctx, owner.ID, func(tx Repository) error {
			entry, err := tx.GetByID(ctx, entryID)
			if err != nil {
				return err
			}

			if actor.ID == entry.OwnerID && entry.Status == internal.StatusPending {
				if !s.guard.MayWriteOwnEntry(actor, owner) {
					return internal.ErrUnauthorizedActor
				}
				return tx.Delete(ctx, entry.ID)
			}
			if s.guard.MayDecideTimeOff(actor, owner) {
				if entry.Status == internal.StatusRejected {
					return nil
				}
				entry.Status = internal.StatusRejected
				entry.ApproverID = &actor.ID
				entry.StatusChangedAt = s.now()
				return tx.Update(ctx, entry)
			}
			return internal.ErrUnauthorizedActor
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("calendar entry removed", "entry_id", entryID, "actor_id", actor.ID)
	return nil
}

// ListEntries returns the owner's entries with date in [from, to] inclusive,
// ordered by date then creation time. An absent "to" means the single day.
func (s *Service) ListEntries(ctx context.Context, actor *user.User, ownerID int64, from time.Time, to *time.Time, status *internal.Status) ([]*Entry, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !s.guard.MayReadProfile(actor, owner) {
		s.logger.Warn("calendar read denied", "actor_id", actor.ID, "owner_id", ownerID)
		return nil, internal.ErrUnauthorizedActor
	}

	until := from
	if to != nil {
		until = *to
	}
	return s.repo.ListWindow(ctx, ownerID, NormalizeDate(from), NormalizeDate(until), status)
}

// RemainingVacation computes the owner's vacation balance over all PENDING
// and ACCEPTED entries.
func (s *Service) RemainingVacation(ctx context.Context, userID int64) (float64, error) {
	vacationTotal, _, _, err := s.policies.PolicyFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	entries, err := s.repo.ListActiveByOwner(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.ledger.RemainingVacation(vacationTotal, entries, nil), nil
}

// OvertimePosition reports accepted overtime hours against the budget.
func (s *Service) OvertimePosition(ctx context.Context, userID int64) (taken, budget float64, err error) {
	_, budget, _, err = s.policies.PolicyFor(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	entries, err := s.repo.ListActiveByOwner(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return s.ledger.OvertimeTaken(entries), budget, nil
}

// validateWindow rejects windows longer than the configured working day.
func (s *Service) validateWindow(e *Entry) error {
	if e.Window == nil {
		return nil
	}
	if float64(e.Window.Minutes()) > s.ledger.WorkingDayHours*60 {
		return internal.NewValidationError("window exceeds the working day",
			internal.ErrCodeValidationFailed, "error.validation")
	}
	return nil
}

// validateDate applies the per-kind date window rules.
func (s *Service) validateDate(e *Entry, leadTime time.Duration) error {
	today := Today(s.now(), s.loc)
	switch e.Kind {
	case KindVacation:
		earliest := NormalizeDate(today.Add(leadTime))
		if e.Date.Before(earliest) {
			return internal.ErrLeadTimeViolated
		}
	case KindOvertime:
		if e.Date.After(today) {
			return internal.ErrDateOutOfRange
		}
	case KindSickDay:
		if e.Date.After(today.AddDate(0, 0, 1)) {
			return internal.ErrDateOutOfRange
		}
	}
	return nil
}

// checkOverlap enforces the one-absence-per-day rule: at most one active
// VACATION or SICK_DAY per day, and overtime only alongside a vacation that
// leaves part of the working day free.
func (s *Service) checkOverlap(ctx context.Context, tx Repository, e *Entry, excludeID int64) error {
	existing, err := tx.ListActiveOnDate(ctx, e.OwnerID, e.Date)
	if err != nil {
		return err
	}

	absence := e.Kind == KindVacation || e.Kind == KindSickDay
	for _, x := range existing {
		if x.ID == excludeID {
			continue
		}
		xAbsence := x.Kind == KindVacation || x.Kind == KindSickDay
		if absence && xAbsence {
			return internal.ErrOverlappingEntry
		}
		if e.Kind == KindVacation && e.FullDay() && x.Kind == KindOvertime {
			return internal.ErrOverlappingEntry
		}
		if e.Kind == KindOvertime && x.Kind == KindVacation && x.FullDay() {
			return internal.ErrOverlappingEntry
		}
	}
	return nil
}

// checkBalance verifies that hypothetically accepting the entry keeps the
// ledger non-negative.
func (s *Service) checkBalance(ctx context.Context, tx Repository, e *Entry, excludeID int64, vacationTotal, overtimeBudget float64) error {
	if e.Kind == KindSickDay {
		// sick days are separate leave, they never touch the vacation budget
		return nil
	}

	entries, err := tx.ListActiveByOwner(ctx, e.OwnerID)
	if err != nil {
		return err
	}
	hypothetical := make([]*Entry, 0, len(entries)+1)
	for _, x := range entries {
		if x.ID == excludeID {
			continue
		}
		hypothetical = append(hypothetical, x)
	}
	hypothetical = append(hypothetical, e)

	switch e.Kind {
	case KindVacation:
		if s.ledger.RemainingVacation(vacationTotal, hypothetical, nil) < -balanceEpsilon {
			return internal.ErrInsufficientBalance
		}
	case KindOvertime:
		if s.ledger.OvertimeReserved(hypothetical) > overtimeBudget+balanceEpsilon {
			return internal.ErrInsufficientBalance
		}
	}
	return nil
}
