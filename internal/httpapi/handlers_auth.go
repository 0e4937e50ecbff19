package httpapi

import (
	"errors"
	"net/http"
	"time"

	"einsatzplan/internal/auth"
	logx "einsatzplan/pkg/logx"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	OrgID    string `json:"orgId"`
	Role     string `json:"role"`
}

func toUserResponse(id auth.Identity) userResponse {
	return userResponse{
		ID:       id.User.ID,
		Email:    id.User.Email,
		FullName: id.User.FullName,
		OrgID:    id.Membership.OrgID,
		Role:     id.Membership.Role,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, id, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.log.Error("login failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(id)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		s.log.Error("logout failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	respondJSON(w, http.StatusOK, toUserResponse(id))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// handleForgotPassword always answers 204 so the response does not reveal
// whether the address exists. The reset link is written to the log; there
// is no outbound mailer.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	link, ok, err := s.auth.RequestReset(r.Context(), req.Email)
	if err != nil {
		s.log.Error("password reset request failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ok {
		s.log.Info("password reset link issued", logx.String("link", link))
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := s.auth.ConfirmReset(r.Context(), req.Token, req.NewPassword)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
	case errors.Is(err, auth.ErrTokenInvalid):
		respondError(w, http.StatusBadRequest, "token invalid or expired")
	default:
		s.log.Error("password reset failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

type createInviteRequest struct {
	OrgID   string `json:"orgId,omitempty"`
	OrgName string `json:"orgName,omitempty"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
}

type createInviteResponse struct {
	InviteID  string `json:"inviteId"`
	OrgID     string `json:"orgId"`
	Link      string `json:"link"`
	ExpiresAt string `json:"expiresAt"`
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	if !s.checkServiceKey(r) {
		respondError(w, http.StatusUnauthorized, "invalid service key")
		return
	}
	var req createInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := s.auth.CreateInvite(r.Context(), auth.CreateInviteParams{
		OrgID:   req.OrgID,
		OrgName: req.OrgName,
		Email:   req.Email,
		Role:    req.Role,
	})
	if err != nil {
		if errors.Is(err, auth.ErrBadRole) || errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrOrgUnknown) {
			respondError(w, http.StatusBadRequest, "invalid invite parameters")
			return
		}
		s.log.Error("create invite failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, createInviteResponse{
		InviteID:  inv.InviteID,
		OrgID:     inv.OrgID,
		Link:      inv.Link,
		ExpiresAt: inv.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

type acceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.auth.AcceptInvite(r.Context(), req.Token, req.Password, req.FullName)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{
			"userId": user.ID,
			"email":  user.Email,
		})
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
	case errors.Is(err, auth.ErrInviteUsed):
		respondError(w, http.StatusConflict, "invite already used")
	case errors.Is(err, auth.ErrInviteExpired):
		respondError(w, http.StatusGone, "invite expired")
	case errors.Is(err, auth.ErrTokenInvalid):
		respondError(w, http.StatusNotFound, "invite not found")
	default:
		s.log.Error("accept invite failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
