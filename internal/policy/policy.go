package policy

import (
	"time"

	"github.com/danekja/ymanager/internal"
	settingsDatamodel "github.com/danekja/ymanager/internal/core/datamodel/settings"
	"github.com/danekja/ymanager/internal/user"
)

// MaxNotificationLeadTime bounds the notice an employee can be required to
// give before a vacation date.
const MaxNotificationLeadTime = 365 * 24 * time.Hour

// Policy is the per-user snapshot governing balances and notice. Edits are
// whole snapshots, never deltas.
type Policy struct {
	UserID               int64
	VacationDaysTotal    float64
	OvertimeHoursBudget  float64
	NotificationLeadTime time.Duration
}

func (p *Policy) Validate() error {
	if p.VacationDaysTotal < 0 || p.OvertimeHoursBudget < 0 {
		return internal.ErrNegativeBudget
	}
	if p.NotificationLeadTime < 0 || p.NotificationLeadTime > MaxNotificationLeadTime {
		return internal.ErrLeadTimeOutOfRange
	}
	return nil
}

// Defaults is the policy template stored once per role and applied to newly
// accepted users.
type Defaults struct {
	Role                 user.Role
	VacationDaysTotal    float64
	OvertimeHoursBudget  float64
	NotificationLeadTime time.Duration
}

func (d *Defaults) Validate() error {
	if _, ok := user.ParseRole(string(d.Role)); !ok {
		return internal.NewValidationError("unknown role", internal.ErrCodeValidationFailed, "error.validation")
	}
	p := Policy{
		VacationDaysTotal:    d.VacationDaysTotal,
		OvertimeHoursBudget:  d.OvertimeHoursBudget,
		NotificationLeadTime: d.NotificationLeadTime,
	}
	return p.Validate()
}

func (d *Defaults) toPolicy(userID int64) *Policy {
	return &Policy{
		UserID:               userID,
		VacationDaysTotal:    d.VacationDaysTotal,
		OvertimeHoursBudget:  d.OvertimeHoursBudget,
		NotificationLeadTime: d.NotificationLeadTime,
	}
}

func ToDataModel(p *Policy) *settingsDatamodel.UserPolicy {
	return &settingsDatamodel.UserPolicy{
		UserID:               p.UserID,
		VacationDaysTotal:    p.VacationDaysTotal,
		OvertimeHoursBudget:  p.OvertimeHoursBudget,
		NotificationLeadTime: int64(p.NotificationLeadTime),
	}
}

func FromDataModel(m *settingsDatamodel.UserPolicy) *Policy {
	return &Policy{
		UserID:               m.UserID,
		VacationDaysTotal:    m.VacationDaysTotal,
		OvertimeHoursBudget:  m.OvertimeHoursBudget,
		NotificationLeadTime: time.Duration(m.NotificationLeadTime),
	}
}

func DefaultsToDataModel(d *Defaults) *settingsDatamodel.DefaultSettings {
	return &settingsDatamodel.DefaultSettings{
		Role:                 string(d.Role),
		VacationDaysTotal:    d.VacationDaysTotal,
		OvertimeHoursBudget:  d.OvertimeHoursBudget,
		NotificationLeadTime: int64(d.NotificationLeadTime),
	}
}

func DefaultsFromDataModel(m *settingsDatamodel.DefaultSettings) *Defaults {
	return &Defaults{
		Role:                 user.Role(m.Role),
		VacationDaysTotal:    m.VacationDaysTotal,
		OvertimeHoursBudget:  m.OvertimeHoursBudget,
		NotificationLeadTime: time.Duration(m.NotificationLeadTime),
	}
}
