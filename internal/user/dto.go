package user

import (
	"github.com/danekja/ymanager/internal"
)

// BasicProfileUser is the listing projection returned by GET /users.
type BasicProfileUser struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              Role            `json:"role"`
	Status            internal.Status `json:"status"`
	RemainingVacation float64         `json:"remaining_vacation"`
}

// FullUserProfile combines the user record, its policy snapshot and the
// ledger-derived balances.
type FullUserProfile struct {
	ID                       int64           `json:"id"`
	Name                     string          `json:"name"`
	Email                    string          `json:"email"`
	Role                     Role            `json:"role"`
	Status                   internal.Status `json:"status"`
	SupervisorID             *int64          `json:"supervisor_id,omitempty"`
	VacationDaysTotal        float64         `json:"vacation_days_total"`
	RemainingVacation        float64         `json:"remaining_vacation"`
	OvertimeHoursTaken       float64         `json:"overtime_hours_taken"`
	OvertimeHoursBudget      float64         `json:"overtime_hours_budget"`
	NotificationLeadTimeDays float64         `json:"notification_lead_time_days"`
}
