package guard

import (
	"strings"

	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
	"github.com/shef088/Hospital-Management-System-sub001/internal/session"
)

// Requirement declares what a route demands: a user type and, for staff
// routes, a role name. Role comparison is case-insensitive. An empty Role
// admits any staff role.
type Requirement struct {
	UserType models.UserType
	Role     string
}

// Guard evaluates requirements against the live session. It only answers
// yes or no; redirecting on denial belongs to the navigation layer.
type Guard struct {
	sessions *session.Store
}

func New(sessions *session.Store) *Guard {
	return &Guard{sessions: sessions}
}

// CanAccess reports whether the current session satisfies req. An absent
// session is always denied.
func (g *Guard) CanAccess(req Requirement) bool {
	return allowed(g.sessions.Current(), req)
}

// Watch evaluates req now and again on every session change, calling fn
// each time. Logout or expiry mid-session retracts access immediately.
// The returned func cancels the watch.
func (g *Guard) Watch(req Requirement, fn func(allowed bool)) func() {
	fn(allowed(g.sessions.Current(), req))
	return g.sessions.Subscribe(func(sess session.Session) {
		fn(allowed(sess, req))
	})
}

func allowed(sess session.Session, req Requirement) bool {
	if !sess.Authenticated() {
		return false
	}
	if sess.User.UserType != req.UserType {
		return false
	}
	if req.Role == "" {
		return true
	}
	if sess.User.UserType != models.UserTypeStaff {
		return false
	}
	return strings.EqualFold(sess.User.RoleName(), req.Role)
}
