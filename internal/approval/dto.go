package approval

import (
	"time"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/calendar"
	"github.com/danekja/ymanager/internal/user"
)

// TimeOffRequestDTO is the approver-facing projection of a vacation or
// overtime entry, with the owner's name resolved for display.
type TimeOffRequestDTO struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	UserName  string          `json:"user_name"`
	Type      calendar.Kind   `json:"type"`
	Date      string          `json:"date"`
	From      *string         `json:"from,omitempty"`
	To        *string         `json:"to,omitempty"`
	Hours     float64         `json:"hours,omitempty"`
	Status    internal.Status `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func toTimeOffDTO(e *calendar.Entry, owner *user.User) *TimeOffRequestDTO {
	entryDTO := calendar.ToDTO(e)
	return &TimeOffRequestDTO{
		ID:        e.ID,
		UserID:    e.OwnerID,
		UserName:  owner.Name,
		Type:      e.Kind,
		Date:      entryDTO.Date,
		From:      entryDTO.From,
		To:        entryDTO.To,
		Hours:     e.Hours,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}

// AuthorizationRequestDTO projects a user awaiting account authorization.
type AuthorizationRequestDTO struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      user.Role       `json:"role"`
	Status    internal.Status `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAuthorizationDTO(u *user.User) *AuthorizationRequestDTO {
	return &AuthorizationRequestDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.AccountStatus,
		CreatedAt: u.CreatedAt,
	}
}

// DecisionDTO is the request payload of PUT /user/requests. Role is only
// honored for authorization decisions, letting the admin pick the role the
// account is accepted into.
type DecisionDTO struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Role   string `json:"role,omitempty"`
}
