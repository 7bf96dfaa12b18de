package access

import (
	"sort"
	"strings"
)

const RoleAdmin = "admin"

// Roles maps a lower-cased email to the roles it holds.
type Roles map[string]map[string]struct{}

// NewRoles grants role to every email in emails.
func NewRoles(role string, emails ...string) Roles {
	r := make(Roles)
	for _, e := range emails {
		r.Grant(e, role)
	}
	return r
}

func (r Roles) Grant(email, role string) {
	key := normalize(email)
	if key == "" {
		return
	}
	if r[key] == nil {
		r[key] = make(map[string]struct{})
	}
	r[key][role] = struct{}{}
}

func (r Roles) Has(email, role string) bool {
	_, ok := r[normalize(email)][role]
	return ok
}

// Of lists the roles held by email in sorted order.
func (r Roles) Of(email string) []string {
	granted := r[normalize(email)]
	out := make([]string, 0, len(granted))
	for role := range granted {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
