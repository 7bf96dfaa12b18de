package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard/internal/access"
	"taskboard/internal/model"
	"taskboard/internal/session"
)

func signedIn(email string) session.State {
	return session.State{Identity: &model.Identity{Email: email}, IsAuthenticating: true}
}

func TestEvaluate(t *testing.T) {
	admins := access.NewRoles(access.RoleAdmin, "b@x.com")

	tests := []struct {
		name  string
		state session.State
		req   access.Requirement
		want  access.Decision
	}{
		{
			name:  "loading wins over everything",
			state: session.State{Loading: true, IsAuthenticating: true, Identity: &model.Identity{Email: "b@x.com"}},
			req:   access.RequireIdentity("b@x.com"),
			want:  access.Decision{Outcome: access.Resolving},
		},
		{
			name:  "not authenticating redirects with the requested path",
			state: session.State{},
			want:  access.Decision{Outcome: access.Unauthenticated, Redirect: "/auth", From: "/admin"},
		},
		{
			name:  "authenticating without identity is denied",
			state: session.State{IsAuthenticating: true},
			want:  access.Decision{Outcome: access.Denied},
		},
		{
			name:  "wrong identity",
			state: signedIn("a@x.com"),
			req:   access.RequireIdentity("b@x.com"),
			want:  access.Decision{Outcome: access.RoleDenied, Home: "/"},
		},
		{
			name:  "identity match is case sensitive",
			state: signedIn("B@x.com"),
			req:   access.RequireIdentity("b@x.com"),
			want:  access.Decision{Outcome: access.RoleDenied, Home: "/"},
		},
		{
			name:  "matching identity",
			state: signedIn("b@x.com"),
			req:   access.RequireIdentity("b@x.com"),
			want:  access.Decision{Outcome: access.Authorized},
		},
		{
			name:  "missing role",
			state: signedIn("a@x.com"),
			req:   access.RequireRole(admins, access.RoleAdmin),
			want:  access.Decision{Outcome: access.RoleDenied, Home: "/"},
		},
		{
			name:  "granted role",
			state: signedIn("B@X.com"),
			req:   access.RequireRole(admins, access.RoleAdmin),
			want:  access.Decision{Outcome: access.Authorized},
		},
		{
			name:  "no requirement",
			state: signedIn("a@x.com"),
			want:  access.Decision{Outcome: access.Authorized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := access.Evaluate(tt.state, "/admin", tt.req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_IsRepeatable(t *testing.T) {
	st := signedIn("a@x.com")
	req := access.RequireIdentity("b@x.com")

	first := access.Evaluate(st, "/admin", req)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, access.Evaluate(st, "/admin", req))
	}
}

func TestRoles(t *testing.T) {
	roles := access.NewRoles(access.RoleAdmin, " Admin@X.com ", "")
	roles.Grant("admin@x.com", "auditor")

	assert.True(t, roles.Has("ADMIN@x.com", access.RoleAdmin))
	assert.False(t, roles.Has("other@x.com", access.RoleAdmin))
	assert.Equal(t, []string{access.RoleAdmin, "auditor"}, roles.Of("admin@x.com"))
	assert.Empty(t, roles.Of("other@x.com"))
	assert.Len(t, roles, 1)
}
