package fileio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/policy"
	"github.com/danekja/ymanager/internal/user"
	"github.com/xuri/excelize/v2"
)

// ErrMalformedSheet covers any structural problem with an imported workbook.
var ErrMalformedSheet = internal.NewValidationError("malformed staff spreadsheet", internal.ErrCodeValidationFailed, "error.import_malformed")

// importColumns is the expected header of the staff sheet.
var importColumns = []string{"Name", "Email", "Role", "Vacation Days", "Overtime Hours"}

// UserStore is the slice of the user repository the importer and exporter need.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	List(ctx context.Context, status *internal.Status) ([]*user.User, error)
}

// PolicyStore persists imported policy snapshots, inheriting the role
// template's lead time for new rows.
type PolicyStore interface {
	GetDefaultsForRole(ctx context.Context, role user.Role) (*policy.Defaults, error)
	GetByUserID(ctx context.Context, userID int64) (*policy.Policy, error)
	Save(ctx context.Context, p *policy.Policy) error
}

// BalanceReader exposes the ledger balances for the exported overview.
type BalanceReader interface {
	RemainingVacation(ctx context.Context, userID int64) (float64, error)
	OvertimePosition(ctx context.Context, userID int64) (taken, budget float64, err error)
}

// ImportResult summarizes one spreadsheet import run.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type Service struct {
	users    UserStore
	policies PolicyStore
	balances BalanceReader
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(users UserStore, policies PolicyStore, balances BalanceReader, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		policies: policies,
		balances: balances,
		logger:   logger,
		now:      time.Now,
	}
}

// ImportStaff loads a staff workbook and upserts one user and policy snapshot
// per row, keyed by email. Imported accounts are ACCEPTED immediately since
// an admin vouched for them. Re-importing the same sheet is a no-op apart
// from refreshed names, roles and budgets.
func (s *Service) ImportStaff(ctx context.Context, actor *user.User, r io.Reader) (*ImportResult, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("staff import denied", "actor_id", actor.ID)
		return nil, internal.ErrUnauthorizedActor
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		s.logger.Warn("staff import: unreadable workbook", "error", err)
		return nil, ErrMalformedSheet
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMalformedSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		return nil, ErrMalformedSheet
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		staff, err := parseStaffRow(row)
		if err != nil {
			s.logger.Warn("staff import: bad row", "row", i+2, "error", err)
			return nil, ErrMalformedSheet
		}
		created, err := s.upsertStaff(ctx, staff)
		if err != nil {
			return nil, err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("staff import finished",
		"actor_id", actor.ID,
		"created", result.Created,
		"updated", result.Updated)
	return result, nil
}

type staffRow struct {
	Name          string
	Email         string
	Role          user.Role
	VacationDays  float64
	OvertimeHours float64
}

func checkHeader(header []string) error {
	if len(header) < len(importColumns) {
		return ErrMalformedSheet
	}
	for i, want := range importColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return ErrMalformedSheet
		}
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseStaffRow(row []string) (*staffRow, error) {
	if len(row) < len(importColumns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(importColumns), len(row))
	}

	name := strings.TrimSpace(row[0])
	email := strings.ToLower(strings.TrimSpace(row[1]))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("missing name or email")
	}

	role, ok := user.ParseRole(strings.TrimSpace(row[2]))
	if !ok {
		return nil, fmt.Errorf("unknown role %q", row[2])
	}

	vacation, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil || vacation < 0 {
		return nil, fmt.Errorf("bad vacation days %q", row[3])
	}
	overtime, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil || overtime < 0 {
		return nil, fmt.Errorf("bad overtime hours %q", row[4])
	}

	return &staffRow{
		Name:          name,
		Email:         email,
		Role:          role,
		VacationDays:  vacation,
		OvertimeHours: overtime,
	}, nil
}

func (s *Service) upsertStaff(ctx context.Context, staff *staffRow) (created bool, err error) {
	existing, err := s.users.GetByEmail(ctx, staff.Email)
	switch {
	case err == nil:
		existing.Name = staff.Name
		existing.Role = staff.Role
		if err := s.users.Update(ctx, existing); err != nil {
			return false, err
		}
		return false, s.savePolicy(ctx, existing.ID, staff)
	case isNotFound(err):
		// new accounts link to OIDC by email until the first login rewrites
		// the subject
		u := &user.User{
			ExternalSubject: staff.Email,
			Email:           staff.Email,
			Name:            staff.Name,
			Role:            staff.Role,
			AccountStatus:   internal.StatusAccepted,
			CreatedAt:       s.now(),
		}
		if err := s.users.Create(ctx, u); err != nil {
			return false, err
		}
		return true, s.savePolicy(ctx, u.ID, staff)
	default:
		return false, err
	}
}

func (s *Service) savePolicy(ctx context.Context, userID int64, staff *staffRow) error {
	leadTime := time.Duration(0)
	if existing, err := s.policies.GetByUserID(ctx, userID); err == nil {
		leadTime = existing.NotificationLeadTime
	} else if defaults, err := s.policies.GetDefaultsForRole(ctx, staff.Role); err == nil {
		leadTime = defaults.NotificationLeadTime
	}

	p := &policy.Policy{
		UserID:               userID,
		VacationDaysTotal:    staff.VacationDays,
		OvertimeHoursBudget:  staff.OvertimeHours,
		NotificationLeadTime: leadTime,
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return s.policies.Save(ctx, p)
}

func isNotFound(err error) bool {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.Code == internal.ErrCodeNotFound
	}
	return errors.Is(err, internal.ErrNotFound)
}
