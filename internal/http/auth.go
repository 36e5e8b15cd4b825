package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FaridaNelson/sp-server/internal/apperr"
	"github.com/FaridaNelson/sp-server/internal/auth"
	"github.com/FaridaNelson/sp-server/internal/crypto"
	"github.com/FaridaNelson/sp-server/internal/metrics"
	"github.com/FaridaNelson/sp-server/internal/model"
	"github.com/FaridaNelson/sp-server/internal/repository"
)

type userSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	Roles     []string `json:"roles"`
	StudentID *string  `json:"studentId,omitempty"`
}

func summaryFromPrincipal(p *auth.Principal) userSummary {
	return userSummary{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role,
		Roles:     p.Roles,
		StudentID: p.StudentID,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	// StudentID accepts either a raw student id or a shared invite
	// code; a parent signup resolves it once and stores the result as
	// the immutable linkage.
	StudentID string `json:"studentId"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeAppError(w, r, apperr.Invalid("invalid request body"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		s.writeAppError(w, r, apperr.Invalid("name, email, and password are required"))
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = model.RoleStudent
	}
	// Admin accounts are provisioned out of band, never self-registered.
	if !model.ValidRole(role) || role == model.RoleAdmin {
		s.writeAppError(w, r, apperr.Invalid("invalid role"))
		return
	}

	var linkedStudentID *string
	if role == model.RoleParent {
		raw := strings.TrimSpace(req.StudentID)
		if raw == "" {
			s.writeAppError(w, r, apperr.Invalid("student ID or join code is required"))
			return
		}
		student, err := s.resolveStudentLink(r, raw)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				s.writeAppError(w, r, apperr.Invalid("student not found, check the ID or code"))
				return
			}
			s.writeAppError(w, r, err)
			return
		}
		linkedStudentID = &student.ID
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        []string{role},
		StudentID:    linkedStudentID,
		Status:       model.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.writeAppError(w, r, apperr.Conflict("email already registered"))
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	principal := auth.PrincipalFromUser(user)
	token, err := s.codec.Issue(principal)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	metrics.Signups.Inc()
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  summaryFromPrincipal(principal),
	})
}

// resolveStudentLink treats its argument as a student id when it parses
// as a uuid and as an invite code otherwise (matched case-insensitively).
func (s *Server) resolveStudentLink(r *http.Request, raw string) (model.Student, error) {
	if _, err := uuid.Parse(raw); err == nil {
		return s.store.GetStudent(r.Context(), raw)
	}
	return s.store.GetStudentByInviteCode(r.Context(), raw)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeAppError(w, r, apperr.Invalid("invalid request body"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		s.writeAppError(w, r, apperr.Invalid("email and password are required"))
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// same message as a bad password, so callers cannot probe
			// which emails are registered
			s.writeAppError(w, r, apperr.Unauthenticated("invalid credentials"))
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.writeAppError(w, r, apperr.Unauthenticated("invalid credentials"))
		return
	}

	if user.Status != model.StatusActive {
		s.writeAppError(w, r, apperr.Forbidden("account is not active"))
		return
	}

	principal := auth.PrincipalFromUser(user)
	token, err := s.codec.Issue(principal)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	metrics.Logins.Inc()
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  summaryFromPrincipal(principal),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": summaryFromPrincipal(principal)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
