package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUsersCreateFindAndRoles(t *testing.T) {
	db := testDB(t)
	users := NewUsersStore(db)
	ctx := context.Background()

	id, err := users.Create(ctx, &User{
		Username:     "Carla",
		PasswordHash: "h",
		Salt:         "s",
		Active:       true,
	}, []string{"admin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Username is normalized to lower case.
	u, roles, err := users.FindByUsername(ctx, "carla")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.ID != id || len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("got %+v roles %v", u, roles)
	}

	if _, err := users.Create(ctx, &User{Username: "carla", PasswordHash: "h", Salt: "s"}, nil); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	if err := users.SetRoles(ctx, id, []string{"viewer"}); err != nil {
		t.Fatalf("set roles: %v", err)
	}
	roles, err = users.Roles(ctx, id)
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if len(roles) != 1 || roles[0] != "viewer" {
		t.Fatalf("roles = %v", roles)
	}

	n, err := users.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("count = %d, err %v", n, err)
	}
}

func TestSessionsExpireOnRead(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionsStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	live := &SessionRecord{
		ID: "live", UserID: 1, Username: "carla", Roles: []string{"admin"},
		CSRFToken: "tok", CreatedAt: now, LastSeenAt: now, ExpiresAt: now.Add(time.Hour),
	}
	dead := &SessionRecord{
		ID: "dead", UserID: 1, Username: "carla", Roles: []string{"admin"},
		CSRFToken: "tok", CreatedAt: now.Add(-2 * time.Hour), LastSeenAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	for _, rec := range []*SessionRecord{live, dead} {
		if err := sessions.SaveSession(ctx, rec); err != nil {
			t.Fatalf("save %s: %v", rec.ID, err)
		}
	}

	got, err := sessions.GetSession(ctx, "live")
	if err != nil || got == nil {
		t.Fatalf("live session: %v %v", got, err)
	}
	if got.Roles[0] != "admin" {
		t.Fatalf("roles lost: %v", got.Roles)
	}

	gone, err := sessions.GetSession(ctx, "dead")
	if err != nil {
		t.Fatalf("dead session read: %v", err)
	}
	if gone != nil {
		t.Fatal("expired session returned")
	}

	n, err := sessions.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 0 {
		// The expired row was already removed by the read above.
		t.Fatalf("expected nothing left to purge, got %d", n)
	}
}

func TestAuditLogListAndPurge(t *testing.T) {
	db := testDB(t)
	audit := NewAuditStore(db)
	ctx := context.Background()

	audit.Log(ctx, "carla", "auth.login", "127.0.0.1")
	audit.Log(ctx, "carla", "settings.update", "sedes")

	entries, err := audit.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}

	n, err := audit.DeleteOlderThan(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged %d", n)
	}
}
