package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "einsatzplan/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	log logx.Logger
}

// Open opens (creating if needed) the database file and applies the
// schema.
func Open(cfg Config, log logx.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &Store{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- organizations ----

func (s *Store) CreateOrganization(ctx context.Context, o Organization) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations(id, name, created_at) VALUES(?,?,?)`,
		o.ID, o.Name, encodeTime(o.CreatedAt),
	)
	return err
}

func (s *Store) GetOrganization(ctx context.Context, id string) (Organization, error) {
	var o Organization
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&o.ID, &o.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	if err != nil {
		return Organization{}, err
	}
	o.CreatedAt = decodeTime(created)
	return o, nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users(id, email, full_name, password_hash, created_at)
		 VALUES(?,?,?,?,?)`,
		u.ID, u.Email, u.FullName, u.PasswordHash, encodeTime(u.CreatedAt),
	)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = decodeTime(created)
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = decodeTime(created)
	return u, nil
}

// UpdateUserPassword replaces the stored hash; full name is updated only
// when non-empty.
func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash, fullName string) error {
	if strings.TrimSpace(fullName) != "" {
		_, err := s.db.ExecContext(ctx,
			`UPDATE users SET password_hash = ?, full_name = ? WHERE id = ?`,
			passwordHash, fullName, userID,
		)
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, userID,
	)
	return err
}

// ---- memberships ----

// UpsertMembership is idempotent; accepting the same invite twice, or a
// new invite for an existing member, just overwrites the role.
func (s *Store) UpsertMembership(ctx context.Context, m Membership) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO org_members(org_id, user_id, role) VALUES(?,?,?)
		 ON CONFLICT(org_id, user_id) DO UPDATE SET role=excluded.role`,
		m.OrgID, m.UserID, m.Role,
	)
	return err
}

// GetMembership resolves a user's organization and role. Users belong to
// one organization; with multiple rows the lexicographically smallest
// org id wins, so the pick is at least deterministic.
func (s *Store) GetMembership(ctx context.Context, userID string) (Membership, error) {
	var m Membership
	err := s.db.QueryRowContext(ctx,
		`SELECT org_id, user_id, role FROM org_members WHERE user_id = ? ORDER BY org_id LIMIT 1`,
		userID,
	).Scan(&m.OrgID, &m.UserID, &m.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return Membership{}, ErrNotFound
	}
	if err != nil {
		return Membership{}, err
	}
	return m, nil
}

// ---- invites ----

func (s *Store) CreateInvite(ctx context.Context, inv Invite) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invites(id, org_id, email, role, token_hash, expires_at, used_at, used_by, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		inv.ID, inv.OrgID, inv.Email, inv.Role, inv.TokenHash,
		encodeTime(inv.ExpiresAt), encodeTimePtr(inv.UsedAt), nullStr(inv.UsedBy),
		encodeTime(inv.CreatedAt),
	)
	return err
}

func (s *Store) GetInviteByTokenHash(ctx context.Context, tokenHash string) (Invite, error) {
	var inv Invite
	var expires, created string
	var used sql.NullString
	var usedBy sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, org_id, email, role, token_hash, expires_at, used_at, used_by, created_at
		 FROM invites WHERE token_hash = ?`,
		tokenHash,
	).Scan(&inv.ID, &inv.OrgID, &inv.Email, &inv.Role, &inv.TokenHash, &expires, &used, &usedBy, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Invite{}, ErrNotFound
	}
	if err != nil {
		return Invite{}, err
	}
	inv.ExpiresAt = decodeTime(expires)
	inv.CreatedAt = decodeTime(created)
	if used.Valid {
		t := decodeTime(used.String)
		inv.UsedAt = &t
	}
	if usedBy.Valid {
		inv.UsedBy = usedBy.String
	}
	return inv, nil
}

func (s *Store) MarkInviteUsed(ctx context.Context, inviteID, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE invites SET used_at = ?, used_by = ? WHERE id = ?`,
		encodeTime(at), userID, inviteID,
	)
	return err
}

// ---- sessions ----

func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(token_hash, user_id, expires_at, created_at) VALUES(?,?,?,?)`,
		sess.TokenHash, sess.UserID, encodeTime(sess.ExpiresAt), encodeTime(sess.CreatedAt),
	)
	return err
}

func (s *Store) GetSession(ctx context.Context, tokenHash string) (Session, error) {
	var sess Session
	var expires, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash = ?`,
		tokenHash,
	).Scan(&sess.TokenHash, &sess.UserID, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	sess.ExpiresAt = decodeTime(expires)
	sess.CreatedAt = decodeTime(created)
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

// ---- password resets ----

func (s *Store) CreatePasswordReset(ctx context.Context, r PasswordReset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO password_resets(token_hash, user_id, expires_at, used_at) VALUES(?,?,?,?)`,
		r.TokenHash, r.UserID, encodeTime(r.ExpiresAt), encodeTimePtr(r.UsedAt),
	)
	return err
}

func (s *Store) GetPasswordReset(ctx context.Context, tokenHash string) (PasswordReset, error) {
	var r PasswordReset
	var expires string
	var used sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, expires_at, used_at FROM password_resets WHERE token_hash = ?`,
		tokenHash,
	).Scan(&r.TokenHash, &r.UserID, &expires, &used)
	if errors.Is(err, sql.ErrNoRows) {
		return PasswordReset{}, ErrNotFound
	}
	if err != nil {
		return PasswordReset{}, err
	}
	r.ExpiresAt = decodeTime(expires)
	if used.Valid {
		t := decodeTime(used.String)
		r.UsedAt = &t
	}
	return r, nil
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE password_resets SET used_at = ? WHERE token_hash = ?`,
		encodeTime(at), tokenHash,
	)
	return err
}

// ---- pruning ----

// PruneExpired deletes invites, sessions and reset tokens past their
// expiry. Returns total rows removed.
func (s *Store) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := encodeTime(now)
	var total int64
	for _, q := range []string{
		`DELETE FROM invites WHERE expires_at < ?`,
		`DELETE FROM sessions WHERE expires_at < ?`,
		`DELETE FROM password_resets WHERE expires_at < ?`,
	} {
		res, err := s.db.ExecContext(ctx, q, cutoff)
		if err != nil {
			return total, err
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// ---- helpers ----

// encodeTime stores UTC seconds precision; the fixed-width form keeps
// string comparison (expiry pruning) consistent with time order.
func encodeTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
