package user

import "context"

type ctxKey string

const contextUserKey ctxKey = "actor"

// NewContext returns a context carrying the acting user. The authentication
// middleware attaches the resolved actor here before handlers run.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

// FromContext extracts the acting user.
func FromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok
}
