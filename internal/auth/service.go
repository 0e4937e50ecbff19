// Package auth implements account provisioning and access control:
// invite-based signup, bearer sessions, and password resets. Tokens are
// random 32-byte values handed to the user once; only SHA-256 hashes are
// persisted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"einsatzplan/internal/storage"
	logx "einsatzplan/pkg/logx"
)

var (
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInviteExpired      = errors.New("invite expired")
	ErrInviteUsed         = errors.New("invite already used")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrBadRole            = errors.New("unknown role")
	ErrOrgUnknown         = errors.New("organization does not exist")
)

// Roles a membership can carry.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Service wires the token and password primitives to the store.
type Service struct {
	store *storage.Store
	log   logx.Logger

	appURL     string
	inviteTTL  time.Duration
	sessionTTL time.Duration
	resetTTL   time.Duration

	now func() time.Time
}

// Options configures a Service. Zero TTLs fall back to sane values.
type Options struct {
	AppURL     string
	InviteTTL  time.Duration
	SessionTTL time.Duration
	ResetTTL   time.Duration
}

func New(store *storage.Store, log logx.Logger, opts Options) *Service {
	if opts.InviteTTL <= 0 {
		opts.InviteTTL = 7 * 24 * time.Hour
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	return &Service{
		store:      store,
		log:        log.With(logx.String("component", "auth")),
		appURL:     strings.TrimRight(opts.AppURL, "/"),
		inviteTTL:  opts.InviteTTL,
		sessionTTL: opts.SessionTTL,
		resetTTL:   opts.ResetTTL,
		now:        time.Now,
	}
}

// NormalizeEmail lowercases and trims an address. Emails are compared
// case-insensitively everywhere.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ---- Invites ----

// CreateInviteParams names the target of a new invite. When OrgID is
// empty, a fresh organization is created from OrgName.
type CreateInviteParams struct {
	OrgID   string
	OrgName string
	Email   string
	Role    string
}

// Invitation is the one-time result of CreateInvite. Link embeds the raw
// token; it is never reconstructable later.
type Invitation struct {
	InviteID  string
	OrgID     string
	Link      string
	Token     string
	ExpiresAt time.Time
}

// CreateInvite provisions an invite for an email address, creating the
// organization on the fly when only a name is given.
func (s *Service) CreateInvite(ctx context.Context, p CreateInviteParams) (Invitation, error) {
	email := NormalizeEmail(p.Email)
	if email == "" {
		return Invitation{}, fmt.Errorf("create invite: %w", ErrInvalidCredentials)
	}
	role := p.Role
	if role == "" {
		role = RoleViewer
	}
	if role != RoleAdmin && role != RoleViewer {
		return Invitation{}, fmt.Errorf("create invite: %w: %q", ErrBadRole, p.Role)
	}

	now := s.now()
	orgID := p.OrgID
	if orgID != "" {
		if _, err := s.store.GetOrganization(ctx, orgID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Invitation{}, fmt.Errorf("create invite: %w: %q", ErrOrgUnknown, orgID)
			}
			return Invitation{}, fmt.Errorf("create invite: %w", err)
		}
	} else {
		orgID = uuid.NewString()
		org := storage.Organization{ID: orgID, Name: strings.TrimSpace(p.OrgName), CreatedAt: now}
		if org.Name == "" {
			org.Name = "Einsatzplan"
		}
		if err := s.store.CreateOrganization(ctx, org); err != nil {
			return Invitation{}, fmt.Errorf("create invite: %w", err)
		}
	}

	token, err := NewToken()
	if err != nil {
		return Invitation{}, err
	}
	inv := storage.Invite{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Email:     email,
		Role:      role,
		TokenHash: HashToken(token),
		ExpiresAt: now.Add(s.inviteTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateInvite(ctx, inv); err != nil {
		return Invitation{}, fmt.Errorf("create invite: %w", err)
	}

	s.log.Info("invite created",
		logx.String("invite_id", inv.ID),
		logx.String("org_id", orgID),
		logx.String("email", email),
		logx.String("role", role),
		logx.Time("expires_at", inv.ExpiresAt))

	return Invitation{
		InviteID:  inv.ID,
		OrgID:     orgID,
		Link:      s.appURL + "/invite/" + token,
		Token:     token,
		ExpiresAt: inv.ExpiresAt,
	}, nil
}

// AcceptInvite redeems an invite token: the account is created (or its
// password updated for an existing address), the org membership is
// upserted, and the invite marked used. Redeeming is idempotent at the
// membership level but a token works exactly once.
func (s *Service) AcceptInvite(ctx context.Context, token, password, fullName string) (storage.User, error) {
	if len(password) < MinPasswordLen {
		return storage.User{}, ErrWeakPassword
	}

	inv, err := s.store.GetInviteByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.User{}, ErrTokenInvalid
		}
		return storage.User{}, fmt.Errorf("accept invite: %w", err)
	}
	now := s.now()
	if inv.UsedAt != nil {
		return storage.User{}, ErrInviteUsed
	}
	if now.After(inv.ExpiresAt) {
		return storage.User{}, ErrInviteExpired
	}

	hash, err := HashPassword(password)
	if err != nil {
		return storage.User{}, err
	}

	user, err := s.store.GetUserByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		if err := s.store.UpdateUserPassword(ctx, user.ID, hash, strings.TrimSpace(fullName)); err != nil {
			return storage.User{}, fmt.Errorf("accept invite: %w", err)
		}
		user.PasswordHash = hash
		if n := strings.TrimSpace(fullName); n != "" {
			user.FullName = n
		}
	case errors.Is(err, storage.ErrNotFound):
		user = storage.User{
			ID:           uuid.NewString(),
			Email:        inv.Email,
			FullName:     strings.TrimSpace(fullName),
			PasswordHash: hash,
			CreatedAt:    now,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return storage.User{}, fmt.Errorf("accept invite: %w", err)
		}
	default:
		return storage.User{}, fmt.Errorf("accept invite: %w", err)
	}

	if err := s.store.UpsertMembership(ctx, storage.Membership{
		OrgID:  inv.OrgID,
		UserID: user.ID,
		Role:   inv.Role,
	}); err != nil {
		return storage.User{}, fmt.Errorf("accept invite: %w", err)
	}
	if err := s.store.MarkInviteUsed(ctx, inv.ID, user.ID, now); err != nil {
		return storage.User{}, fmt.Errorf("accept invite: %w", err)
	}

	s.log.Info("invite accepted",
		logx.String("invite_id", inv.ID),
		logx.String("org_id", inv.OrgID),
		logx.String("user_id", user.ID))
	return user, nil
}

// ---- Sessions ----

// Identity is a resolved session: the user plus their org membership.
type Identity struct {
	User       storage.User
	Membership storage.Membership
}

// IsAdmin reports whether the identity may mutate org data.
func (id Identity) IsAdmin() bool { return id.Membership.Role == RoleAdmin }

// Login verifies credentials and mints a bearer session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, Identity, error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", Identity{}, ErrInvalidCredentials
		}
		return "", Identity{}, fmt.Errorf("login: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return "", Identity{}, ErrInvalidCredentials
	}

	member, err := s.store.GetMembership(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", Identity{}, ErrInvalidCredentials
		}
		return "", Identity{}, fmt.Errorf("login: %w", err)
	}

	token, err := NewToken()
	if err != nil {
		return "", Identity{}, err
	}
	now := s.now()
	if err := s.store.CreateSession(ctx, storage.Session{
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}); err != nil {
		return "", Identity{}, fmt.Errorf("login: %w", err)
	}

	s.log.Info("login", logx.String("user_id", user.ID), logx.String("org_id", member.OrgID))
	return token, Identity{User: user, Membership: member}, nil
}

// Resolve maps a bearer token to its identity. Expired or unknown tokens
// return ErrTokenInvalid.
func (s *Service) Resolve(ctx context.Context, token string) (Identity, error) {
	sess, err := s.store.GetSession(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Identity{}, ErrTokenInvalid
		}
		return Identity{}, fmt.Errorf("resolve session: %w", err)
	}
	if s.now().After(sess.ExpiresAt) {
		return Identity{}, ErrTokenInvalid
	}
	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}
	member, err := s.store.GetMembership(ctx, user.ID)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{User: user, Membership: member}, nil
}

// Logout drops the session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, HashToken(token)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ---- Password reset ----

// RequestReset mints a single-use reset token for an email address. For
// unknown addresses it returns ok=false with no error, so callers can
// answer identically either way and not leak which emails exist.
func (s *Service) RequestReset(ctx context.Context, email string) (link string, ok bool, err error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("request reset: %w", err)
	}

	token, err := NewToken()
	if err != nil {
		return "", false, err
	}
	now := s.now()
	if err := s.store.CreatePasswordReset(ctx, storage.PasswordReset{
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.resetTTL),
	}); err != nil {
		return "", false, fmt.Errorf("request reset: %w", err)
	}

	s.log.Info("password reset requested", logx.String("user_id", user.ID))
	return s.appURL + "/reset/" + token, true, nil
}

// ConfirmReset redeems a reset token and sets the new password. The token
// is single use.
func (s *Service) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLen {
		return ErrWeakPassword
	}
	r, err := s.store.GetPasswordReset(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("confirm reset: %w", err)
	}
	now := s.now()
	if r.UsedAt != nil || now.After(r.ExpiresAt) {
		return ErrTokenInvalid
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUserPassword(ctx, r.UserID, hash, ""); err != nil {
		return fmt.Errorf("confirm reset: %w", err)
	}
	if err := s.store.MarkPasswordResetUsed(ctx, HashToken(token), now); err != nil {
		return fmt.Errorf("confirm reset: %w", err)
	}

	s.log.Info("password reset confirmed", logx.String("user_id", r.UserID))
	return nil
}
