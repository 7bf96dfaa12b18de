package access

import (
	"taskboard/internal/model"
	"taskboard/internal/session"
)

const (
	LoginPath = "/auth"
	HomePath  = "/"
)

// Outcome is the kind of decision the guard reached.
type Outcome int

const (
	Resolving Outcome = iota
	Unauthenticated
	Denied
	RoleDenied
	Authorized
)

func (o Outcome) String() string {
	switch o {
	case Resolving:
		return "resolving"
	case Unauthenticated:
		return "unauthenticated"
	case Denied:
		return "denied"
	case RoleDenied:
		return "role-denied"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}

// Decision is the guard's verdict for one request.
type Decision struct {
	Outcome  Outcome
	Redirect string // set for Unauthenticated
	From     string // set for Unauthenticated
	Home     string // set for RoleDenied
}

// Requirement restricts a screen beyond "signed in".
type Requirement interface {
	Allows(id *model.Identity) bool
}

type roleRequirement struct {
	roles Roles
	role  string
}

func (r roleRequirement) Allows(id *model.Identity) bool {
	return r.roles.Has(id.Email, r.role)
}

// RequireRole admits identities granted role in the table.
func RequireRole(roles Roles, role string) Requirement {
	return roleRequirement{roles: roles, role: role}
}

type identityRequirement string

func (r identityRequirement) Allows(id *model.Identity) bool {
	return id.Email == string(r)
}

// RequireIdentity admits exactly one email address.
func RequireIdentity(email string) Requirement {
	return identityRequirement(email)
}

// Evaluate decides whether the viewer described by st may see path. The
// checks run top to bottom and the first match wins. req may be nil.
func Evaluate(st session.State, path string, req Requirement) Decision {
	switch {
	case st.Loading:
		return Decision{Outcome: Resolving}
	case !st.IsAuthenticating:
		return Decision{Outcome: Unauthenticated, Redirect: LoginPath, From: path}
	case st.Identity == nil:
		return Decision{Outcome: Denied}
	case req != nil && !req.Allows(st.Identity):
		return Decision{Outcome: RoleDenied, Home: HomePath}
	}
	return Decision{Outcome: Authorized}
}
