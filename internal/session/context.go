package session

import "context"

type ctxKey string

const sessionKey ctxKey = "clinicdesk.session"

// Session carries the authenticated identity for one request. It replaces
// ambient global user state: anything that needs to know who is acting
// receives it through the request context.
type Session struct {
	UserID   string
	DoctorID string
	Role     string
}

// IsDoctor reports whether the session belongs to a doctor account.
func (s Session) IsDoctor() bool {
	return s.DoctorID != ""
}

// WithSession stores the session in context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext extracts the session if present.
func FromContext(ctx context.Context) (Session, bool) {
	val := ctx.Value(sessionKey)
	if val == nil {
		return Session{}, false
	}
	s, ok := val.(Session)
	return s, ok && s.UserID != ""
}
