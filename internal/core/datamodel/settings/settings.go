package settings

import "time"

// UserPolicy is the per-user snapshot of budgets and notice. Edits replace
// the whole row, never apply deltas.
type UserPolicy struct {
	ID                   int64     `gorm:"primaryKey"`
	UserID               int64     `gorm:"column:user_id;uniqueIndex;not null"`
	VacationDaysTotal    float64   `gorm:"column:vacation_days_total;not null"`
	OvertimeHoursBudget  float64   `gorm:"column:overtime_hours_budget;not null"`
	NotificationLeadTime int64     `gorm:"column:notification_lead_time_ns;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt            time.Time `gorm:"column:updated_at;default:now()"`
}

func (UserPolicy) TableName() string {
	return "user_policy"
}

// DefaultSettings is the policy template applied to newly accepted users of
// a role. One row per role.
type DefaultSettings struct {
	ID                   int64     `gorm:"primaryKey"`
	Role                 string    `gorm:"column:role;uniqueIndex;not null"`
	VacationDaysTotal    float64   `gorm:"column:vacation_days_total;not null"`
	OvertimeHoursBudget  float64   `gorm:"column:overtime_hours_budget;not null"`
	NotificationLeadTime int64     `gorm:"column:notification_lead_time_ns;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt            time.Time `gorm:"column:updated_at;default:now()"`
}

func (DefaultSettings) TableName() string {
	return "default_settings"
}
