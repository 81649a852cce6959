package rbac

import (
	"reflect"
	"testing"
)

func TestDefaultRolePermissions(t *testing.T) {
	p := NewPolicy(DefaultRoles())

	if !p.Allowed([]string{"admin"}, PermAccountsManage) {
		t.Fatal("admin must manage accounts")
	}
	if !p.Allowed([]string{"viewer"}, PermIncidentsView) {
		t.Fatal("viewer must view incidents")
	}
	if p.Allowed([]string{"viewer"}, PermIncidentsManage) {
		t.Fatal("viewer must not manage incidents")
	}
	if p.Allowed([]string{"viewer"}, PermSettingsManage) {
		t.Fatal("viewer must not manage settings")
	}
	if p.Allowed(nil, PermIncidentsView) {
		t.Fatal("no roles, no access")
	}
	// Any granting role in the set is enough.
	if !p.Allowed([]string{"viewer", "admin"}, PermSettingsManage) {
		t.Fatal("admin role in the set must grant")
	}
}

func TestValidRoles(t *testing.T) {
	p := NewPolicy(DefaultRoles())

	got, err := p.ValidRoles([]string{" Admin ", "viewer", "admin"})
	if err != nil {
		t.Fatalf("valid roles: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"admin", "viewer"}) {
		t.Fatalf("roles = %v", got)
	}

	if _, err := p.ValidRoles([]string{"root"}); err == nil {
		t.Fatal("unknown role accepted")
	}

	got, err = p.ValidRoles(nil)
	if err != nil || !reflect.DeepEqual(got, []string{"viewer"}) {
		t.Fatalf("default roles = %v err %v", got, err)
	}
}
