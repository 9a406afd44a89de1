package policy

import (
	"time"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/user"
)

const hoursPerDay = 24

// DefaultsDTO is the wire form of a per-role policy template. Lead time is
// expressed in whole days on the wire.
type DefaultsDTO struct {
	Role                     string  `json:"role"`
	VacationDaysTotal        float64 `json:"vacation_days"`
	OvertimeHoursBudget      float64 `json:"overtime_hours"`
	NotificationLeadTimeDays int     `json:"notification_lead_time_days"`
}

func (dto DefaultsDTO) ToDefaults() (*Defaults, error) {
	role, ok := user.ParseRole(dto.Role)
	if !ok {
		return nil, internal.NewValidationError("unknown role", internal.ErrCodeValidationFailed, "error.validation")
	}
	return &Defaults{
		Role:                 role,
		VacationDaysTotal:    dto.VacationDaysTotal,
		OvertimeHoursBudget:  dto.OvertimeHoursBudget,
		NotificationLeadTime: time.Duration(dto.NotificationLeadTimeDays) * hoursPerDay * time.Hour,
	}, nil
}

func defaultsToDTO(d *Defaults) *DefaultsDTO {
	return &DefaultsDTO{
		Role:                     string(d.Role),
		VacationDaysTotal:        d.VacationDaysTotal,
		OvertimeHoursBudget:      d.OvertimeHoursBudget,
		NotificationLeadTimeDays: int(d.NotificationLeadTime / (hoursPerDay * time.Hour)),
	}
}

func defaultsToDTOSlice(defaults []*Defaults) []*DefaultsDTO {
	result := make([]*DefaultsDTO, len(defaults))
	for i, d := range defaults {
		result[i] = defaultsToDTO(d)
	}
	return result
}

// UserPolicyDTO is the request payload of PUT /user/settings. It replaces the
// target's policy snapshot wholesale.
type UserPolicyDTO struct {
	UserID                   int64   `json:"user_id"`
	VacationDaysTotal        float64 `json:"vacation_days"`
	OvertimeHoursBudget      float64 `json:"overtime_hours"`
	NotificationLeadTimeDays int     `json:"notification_lead_time_days"`
}

func (dto UserPolicyDTO) ToPolicy() *Policy {
	return &Policy{
		UserID:               dto.UserID,
		VacationDaysTotal:    dto.VacationDaysTotal,
		OvertimeHoursBudget:  dto.OvertimeHoursBudget,
		NotificationLeadTime: time.Duration(dto.NotificationLeadTimeDays) * hoursPerDay * time.Hour,
	}
}
