package user

import "time"

type User struct {
	ID              int64     `gorm:"primaryKey"`
	ExternalSubject string    `gorm:"column:external_subject;uniqueIndex;not null"`
	Email           string    `gorm:"column:email;not null"`
	Name            string    `gorm:"column:name;not null"`
	Role            string    `gorm:"column:role;default:EMPLOYEE"`
	AccountStatus   string    `gorm:"column:account_status;default:PENDING"`
	SupervisorID    *int64    `gorm:"column:supervisor_id"`
	CreatedAt       time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
