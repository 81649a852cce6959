// Package rbac maps admin-panel roles to permissions. Roles are fixed at
// startup; the enforcer is read-only afterwards.
package rbac

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Permission string

const (
	PermAccountsManage  Permission = "accounts.manage"
	PermSettingsManage  Permission = "settings.manage"
	PermIncidentsView   Permission = "incidents.view"
	PermIncidentsManage Permission = "incidents.manage"
	PermReportsView     Permission = "reports.view"
)

type Role struct {
	Name        string
	Permissions []Permission
}

// DefaultRoles: admin manages everything; viewer reads incidents and reports.
func DefaultRoles() []Role {
	return []Role{
		{Name: "admin", Permissions: []Permission{
			PermAccountsManage, PermSettingsManage,
			PermIncidentsView, PermIncidentsManage, PermReportsView,
		}},
		{Name: "viewer", Permissions: []Permission{
			PermIncidentsView, PermReportsView,
		}},
	}
}

const modelText = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy(roles []Role) *Policy {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		panic(err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		panic(err)
	}
	for _, role := range roles {
		for _, perm := range role.Permissions {
			_, _ = e.AddPolicy(role.Name, string(perm))
		}
	}
	return &Policy{enforcer: e}
}

// Allowed reports whether any of the roles grants perm.
func (p *Policy) Allowed(roles []string, perm Permission) bool {
	if p == nil || p.enforcer == nil {
		return false
	}
	for _, role := range roles {
		if ok, _ := p.enforcer.Enforce(role, string(perm)); ok {
			return true
		}
	}
	return false
}

// ValidRoles normalizes and checks a role list against the known roles. An
// empty list defaults to viewer.
func (p *Policy) ValidRoles(roles []string) ([]string, error) {
	if len(roles) == 0 {
		return []string{"viewer"}, nil
	}
	known := make(map[string]struct{})
	for _, name := range p.RoleNames() {
		known[name] = struct{}{}
	}
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{})
	for _, role := range roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if _, ok := known[role]; !ok {
			return nil, fmt.Errorf("unknown role %q", role)
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out, nil
}

// RoleNames lists the roles the policy knows about.
func (p *Policy) RoleNames() []string {
	var names []string
	for _, r := range DefaultRoles() {
		names = append(names, r.Name)
	}
	return names
}
