package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"einsatzplan/internal/plan"
	logx "einsatzplan/pkg/logx"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOrganizationUserMembership(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	org := Organization{ID: "org1", Name: "Baumpflege Nord", CreatedAt: now}
	if err := st.CreateOrganization(ctx, org); err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	got, err := st.GetOrganization(ctx, "org1")
	if err != nil || got.Name != org.Name {
		t.Fatalf("GetOrganization = %+v, %v", got, err)
	}

	u := User{ID: "u1", Email: "chef@example.com", FullName: "Chef", PasswordHash: "x", CreatedAt: now}
	if err := st.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	byMail, err := st.GetUserByEmail(ctx, "chef@example.com")
	if err != nil || byMail.ID != "u1" {
		t.Fatalf("GetUserByEmail = %+v, %v", byMail, err)
	}

	if err := st.UpsertMembership(ctx, Membership{OrgID: "org1", UserID: "u1", Role: "viewer"}); err != nil {
		t.Fatalf("UpsertMembership: %v", err)
	}
	// idempotent upsert overwrites the role
	if err := st.UpsertMembership(ctx, Membership{OrgID: "org1", UserID: "u1", Role: "admin"}); err != nil {
		t.Fatalf("UpsertMembership again: %v", err)
	}
	m, err := st.GetMembership(ctx, "u1")
	if err != nil || m.OrgID != "org1" || m.Role != "admin" {
		t.Fatalf("GetMembership = %+v, %v", m, err)
	}

	if _, err := st.GetMembership(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing membership err = %v", err)
	}
}

func TestInviteLifecycle(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	inv := Invite{
		ID: "i1", OrgID: "org1", Email: "neu@example.com", Role: "viewer",
		TokenHash: "hash1", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	if err := st.CreateInvite(ctx, inv); err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	got, err := st.GetInviteByTokenHash(ctx, "hash1")
	if err != nil {
		t.Fatalf("GetInviteByTokenHash: %v", err)
	}
	if got.Email != inv.Email || got.UsedAt != nil {
		t.Fatalf("invite = %+v", got)
	}

	if err := st.MarkInviteUsed(ctx, "i1", "u9", now); err != nil {
		t.Fatalf("MarkInviteUsed: %v", err)
	}
	got, err = st.GetInviteByTokenHash(ctx, "hash1")
	if err != nil || got.UsedAt == nil || got.UsedBy != "u9" {
		t.Fatalf("used invite = %+v, %v", got, err)
	}

	if _, err := st.GetInviteByTokenHash(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing invite err = %v", err)
	}
}

func TestEinsatzCRUD(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	e, err := plan.NewEinsatz(plan.Draft{
		ID: "e1", OrgID: "org1", Customer: "Klaus", Location: "Ettlingen",
		Date: "2026-09-01", Start: "09:00", End: "12:00",
		PeopleCount: 2, PeopleList: []string{"Max"}, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("NewEinsatz: %v", err)
	}

	if err := st.UpsertEinsatz(ctx, e, now); err != nil {
		t.Fatalf("UpsertEinsatz: %v", err)
	}

	got, err := st.GetEinsatz(ctx, "org1", "e1")
	if err != nil {
		t.Fatalf("GetEinsatz: %v", err)
	}
	if got.Customer != "Klaus" || got.Start != "09:00" || got.DurationHours != 3 {
		t.Fatalf("round trip = %+v", got)
	}
	if len(got.PeopleList) != got.PeopleCount {
		t.Fatalf("people invariant broken: %+v", got)
	}

	// upsert replaces in place
	e.Note = "Hecke"
	e.Status = plan.StatusDone
	if err := st.UpsertEinsatz(ctx, e, now.Add(time.Minute)); err != nil {
		t.Fatalf("UpsertEinsatz update: %v", err)
	}
	got, _ = st.GetEinsatz(ctx, "org1", "e1")
	if got.Note != "Hecke" || got.Status != plan.StatusDone {
		t.Fatalf("after update = %+v", got)
	}

	list, err := st.ListEinsaetze(ctx, "org1", "2026-08-31", "2026-09-06")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListEinsaetze = %d, %v", len(list), err)
	}
	if list, _ := st.ListEinsaetze(ctx, "org1", "2026-09-07", ""); len(list) != 0 {
		t.Fatalf("out-of-range list = %d", len(list))
	}
	if list, _ := st.ListEinsaetze(ctx, "other-org", "", ""); len(list) != 0 {
		t.Fatal("org scoping broken")
	}

	if err := st.PatchEinsatzStatus(ctx, "org1", "e1", plan.StatusPlanned, now); err != nil {
		t.Fatalf("PatchEinsatzStatus: %v", err)
	}
	got, _ = st.GetEinsatz(ctx, "org1", "e1")
	if got.Status != plan.StatusPlanned {
		t.Fatalf("status = %q", got.Status)
	}
	if err := st.PatchEinsatzStatus(ctx, "org1", "missing", plan.StatusDone, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("patch missing err = %v", err)
	}

	if err := st.DeleteEinsatz(ctx, "org1", "e1"); err != nil {
		t.Fatalf("DeleteEinsatz: %v", err)
	}
	if _, err := st.GetEinsatz(ctx, "org1", "e1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
}

func TestUpsertEinsatzScopedToOrg(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	mk := func(org, customer string) plan.Einsatz {
		t.Helper()
		e, err := plan.NewEinsatz(plan.Draft{
			ID: "shared-id", OrgID: org, Customer: customer,
			Date: "2026-09-02", Start: "08:00", End: "10:00", CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("NewEinsatz: %v", err)
		}
		return e
	}

	if err := st.UpsertEinsatz(ctx, mk("org-a", "Kunde A"), now); err != nil {
		t.Fatalf("UpsertEinsatz org-a: %v", err)
	}
	// same id under a different org is a distinct row, not an overwrite
	if err := st.UpsertEinsatz(ctx, mk("org-b", "Kunde B"), now); err != nil {
		t.Fatalf("UpsertEinsatz org-b: %v", err)
	}

	a, err := st.GetEinsatz(ctx, "org-a", "shared-id")
	if err != nil || a.Customer != "Kunde A" {
		t.Fatalf("org-a row = %+v, %v", a, err)
	}
	b, err := st.GetEinsatz(ctx, "org-b", "shared-id")
	if err != nil || b.Customer != "Kunde B" {
		t.Fatalf("org-b row = %+v, %v", b, err)
	}

	// the upsert only ever replaces within its own org
	if err := st.UpsertEinsatz(ctx, mk("org-b", "Kunde B neu"), now); err != nil {
		t.Fatalf("second org-b upsert: %v", err)
	}
	a, _ = st.GetEinsatz(ctx, "org-a", "shared-id")
	if a.Customer != "Kunde A" {
		t.Fatalf("org-a row changed: %+v", a)
	}
	list, err := st.ListEinsaetze(ctx, "org-b", "", "")
	if err != nil || len(list) != 1 || list[0].Customer != "Kunde B neu" {
		t.Fatalf("org-b list = %+v, %v", list, err)
	}
}

func TestPruneExpired(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_ = st.CreateInvite(ctx, Invite{ID: "old", OrgID: "o", Email: "a@b", Role: "viewer",
		TokenHash: "t1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)})
	_ = st.CreateInvite(ctx, Invite{ID: "fresh", OrgID: "o", Email: "a@b", Role: "viewer",
		TokenHash: "t2", ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	_ = st.CreateSession(ctx, Session{TokenHash: "s1", UserID: "u", ExpiresAt: now.Add(-time.Minute), CreatedAt: now})
	_ = st.CreatePasswordReset(ctx, PasswordReset{TokenHash: "r1", UserID: "u", ExpiresAt: now.Add(-time.Minute)})

	n, err := st.PruneExpired(ctx, now)
	if err != nil {
		t.Fatalf("PruneExpired: %v", err)
	}
	if n != 3 {
		t.Fatalf("pruned %d rows, want 3", n)
	}

	if _, err := st.GetInviteByTokenHash(ctx, "t2"); err != nil {
		t.Fatalf("fresh invite pruned: %v", err)
	}
	if _, err := st.GetInviteByTokenHash(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired invite survived: %v", err)
	}
}
