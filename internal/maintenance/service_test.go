package maintenance

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"einsatzplan/internal/storage"
	logx "einsatzplan/pkg/logx"
)

func TestRunOncePrunes(t *testing.T) {
	t.Parallel()
	st, err := storage.Open(storage.Config{Path: filepath.Join(t.TempDir(), "m.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	now := time.Now()
	_ = st.CreateSession(ctx, storage.Session{TokenHash: "dead", UserID: "u", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)})
	_ = st.CreateSession(ctx, storage.Session{TokenHash: "live", UserID: "u", ExpiresAt: now.Add(time.Hour), CreatedAt: now})

	svc := New(Config{Enabled: true}, st, logx.Nop())
	svc.RunOnce(ctx)

	if _, err := st.GetSession(ctx, "dead"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expired session survived: %v", err)
	}
	if _, err := st.GetSession(ctx, "live"); err != nil {
		t.Fatalf("live session pruned: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	st, err := storage.Open(storage.Config{Path: filepath.Join(t.TempDir(), "m.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc := New(Config{Enabled: true, Schedule: "@hourly"}, st, logx.Nop())
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// idempotent
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	svc.Stop()
	svc.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	st, err := storage.Open(storage.Config{Path: filepath.Join(t.TempDir(), "m.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc := New(Config{Enabled: true, Schedule: "not a cron spec"}, st, logx.Nop())
	if err := svc.Start(context.Background()); err == nil {
		t.Fatal("bad schedule accepted")
	}
}

func TestDisabledIsNoop(t *testing.T) {
	t.Parallel()
	svc := New(Config{Enabled: false}, nil, logx.Nop())
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.Stop()
}
