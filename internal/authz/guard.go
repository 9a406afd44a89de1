// Package authz implements the authorization matrix as a pure predicate over
// the acting and target users. It never touches storage; callers pass fully
// resolved records.
package authz

import (
	"github.com/danekja/ymanager/internal/user"
)

type Action string

const (
	ActionReadProfile         Action = "read_profile"
	ActionWriteOwnEntry       Action = "write_own_entry"
	ActionDecideTimeOff       Action = "decide_time_off"
	ActionChangePolicy        Action = "change_policy"
	ActionChangeDefaults      Action = "change_defaults"
	ActionDecideAuthorization Action = "decide_authorization"
)

type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// May evaluates the permission matrix. A PENDING or REJECTED actor has no
// role-gated permissions; reading one's own profile is the only thing such
// an account can do.
func (g *Guard) May(actor *user.User, action Action, target *user.User) bool {
	if actor == nil {
		return false
	}

	switch action {
	case ActionReadProfile:
		if target != nil && actor.ID == target.ID {
			return true
		}
		return actor.IsSupervisorOf(target) || actor.IsAdmin()
	case ActionWriteOwnEntry:
		return actor.IsAccepted() && target != nil && actor.ID == target.ID
	case ActionDecideTimeOff:
		// nobody decides their own request, admins included
		if target != nil && actor.ID == target.ID {
			return false
		}
		return actor.IsSupervisorOf(target) || actor.IsAdmin()
	case ActionChangePolicy:
		return actor.IsSupervisorOf(target) || actor.IsAdmin()
	case ActionChangeDefaults, ActionDecideAuthorization:
		return actor.IsAdmin()
	}
	return false
}

func (g *Guard) MayReadProfile(actor, target *user.User) bool {
	return g.May(actor, ActionReadProfile, target)
}

func (g *Guard) MayWriteOwnEntry(actor, target *user.User) bool {
	return g.May(actor, ActionWriteOwnEntry, target)
}

func (g *Guard) MayDecideTimeOff(actor, target *user.User) bool {
	return g.May(actor, ActionDecideTimeOff, target)
}

func (g *Guard) MayChangePolicy(actor, target *user.User) bool {
	return g.May(actor, ActionChangePolicy, target)
}

func (g *Guard) MayChangeDefaults(actor *user.User) bool {
	return g.May(actor, ActionChangeDefaults, nil)
}

func (g *Guard) MayDecideAuthorization(actor *user.User) bool {
	return g.May(actor, ActionDecideAuthorization, nil)
}
