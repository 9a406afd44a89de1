package calendar

import "time"

type Entry struct {
	ID              int64     `gorm:"primaryKey"`
	OwnerID         int64     `gorm:"column:owner_id;not null;index"`
	Kind            string    `gorm:"column:kind;not null"`
	Date            time.Time `gorm:"column:date;type:date;not null"`
	FromMinute      *int      `gorm:"column:from_minute"`
	ToMinute        *int      `gorm:"column:to_minute"`
	Hours           float64   `gorm:"column:hours"`
	Status          string    `gorm:"column:status;default:PENDING"`
	ApproverID      *int64    `gorm:"column:approver_id"`
	CreatedAt       time.Time `gorm:"column:created_at;default:now()"`
	StatusChangedAt time.Time `gorm:"column:status_changed_at;default:now()"`
}

func (Entry) TableName() string {
	return "calendar_entry"
}
