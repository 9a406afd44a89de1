package user

import (
	"strings"
	"time"

	"github.com/danekja/ymanager/internal"
	userDatamodel "github.com/danekja/ymanager/internal/core/datamodel/user"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole parses a role value case-insensitively.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToUpper(raw) {
	case string(RoleEmployee):
		return RoleEmployee, true
	case string(RoleManager):
		return RoleManager, true
	case string(RoleAdmin):
		return RoleAdmin, true
	}
	return "", false
}

// User is an account known to the server. Exactly one user exists per
// external subject; the record is retained even after rejection.
type User struct {
	ID              int64           `json:"id"`
	ExternalSubject string          `json:"-"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Role            Role            `json:"role"`
	AccountStatus   internal.Status `json:"status"`
	SupervisorID    *int64          `json:"supervisor_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (u *User) IsAccepted() bool {
	return u.AccountStatus == internal.StatusAccepted
}

// IsAdmin reports whether the user holds admin powers. A PENDING or REJECTED
// account has no role-gated permissions regardless of its role column.
func (u *User) IsAdmin() bool {
	return u.IsAccepted() && u.Role == RoleAdmin
}

// IsSupervisorOf reports whether target points at u as its supervisor.
func (u *User) IsSupervisorOf(target *User) bool {
	if !u.IsAccepted() || target == nil || target.SupervisorID == nil {
		return false
	}
	return *target.SupervisorID == u.ID
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:              u.ID,
		ExternalSubject: u.ExternalSubject,
		Email:           u.Email,
		Name:            u.Name,
		Role:            string(u.Role),
		AccountStatus:   string(u.AccountStatus),
		SupervisorID:    u.SupervisorID,
		CreatedAt:       u.CreatedAt,
	}
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:              m.ID,
		ExternalSubject: m.ExternalSubject,
		Email:           m.Email,
		Name:            m.Name,
		Role:            Role(m.Role),
		AccountStatus:   internal.Status(m.AccountStatus),
		SupervisorID:    m.SupervisorID,
		CreatedAt:       m.CreatedAt,
	}
}

func FromDataModelSlice(ms []*userDatamodel.User) []*User {
	result := make([]*User, len(ms))
	for i, m := range ms {
		result[i] = FromDataModel(m)
	}
	return result
}
