package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FaridaNelson/sp-server/internal/apperr"
	"github.com/FaridaNelson/sp-server/internal/auth"
	"github.com/FaridaNelson/sp-server/internal/crypto"
	"github.com/FaridaNelson/sp-server/internal/model"
	"github.com/FaridaNelson/sp-server/internal/repository"
)

type studentSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Instrument *string `json:"instrument,omitempty"`
	Grade      *int    `json:"grade,omitempty"`
	ParentName *string `json:"parentName,omitempty"`
	InviteCode string  `json:"inviteCode"`
}

func summaryFromStudent(student model.Student) studentSummary {
	return studentSummary{
		ID:         student.ID,
		Name:       student.Name,
		Email:      student.Email,
		Instrument: student.Instrument,
		Grade:      student.Grade,
		ParentName: student.ParentName,
		InviteCode: student.InviteCode,
	}
}

// ownedStudent is the teacher-owned resource rule. The lookup is scoped
// to the caller's own id, and a cross-tenant miss is reported as
// NotFound rather than Forbidden: existence of other teachers' students
// is deliberately hidden so status codes cannot be used to probe ids.
// An admin bypasses the scoping and gets a plain lookup, where NotFound
// means genuinely absent.
func (s *Server) ownedStudent(r *http.Request, p *auth.Principal, studentID string) (model.Student, error) {
	var (
		student model.Student
		err     error
	)
	if p.IsAdmin() {
		student, err = s.store.GetStudent(r.Context(), studentID)
	} else {
		student, err = s.store.GetStudentForTeacher(r.Context(), studentID, p.ID)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, apperr.NotFound("student not found")
	}
	return student, err
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	students, err := s.store.ListStudentsByTeacher(r.Context(), principal.ID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	summaries := make([]studentSummary, 0, len(students))
	for _, student := range students {
		summaries = append(summaries, summaryFromStudent(student))
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": summaries})
}

type createStudentRequest struct {
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Instrument  *string `json:"instrument"`
	Grade       *int    `json:"grade"`
	ParentName  *string `json:"parentName"`
	ParentEmail *string `json:"parentEmail"`
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	var req createStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeAppError(w, r, apperr.Invalid("invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.writeAppError(w, r, apperr.Invalid("name is required"))
		return
	}

	now := time.Now().UTC()
	student := model.Student{
		ID:            uuid.NewString(),
		TeacherID:     principal.ID,
		Name:          req.Name,
		Email:         req.Email,
		Instrument:    req.Instrument,
		Grade:         req.Grade,
		ParentName:    req.ParentName,
		ParentEmail:   req.ParentEmail,
		ProgressItems: model.DefaultProgressItems(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// retry a couple of times on the unlikely invite code collision;
	// the code is generated exactly once per student and never reused
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		student.InviteCode, err = crypto.NewInviteCode()
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		err = s.store.CreateStudent(r.Context(), student)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"student": summaryFromStudent(student)})
}

// progressOrDefault substitutes the stock six-element curriculum when a
// student has no stored items yet.
func progressOrDefault(student model.Student) []model.ProgressItem {
	if len(student.ProgressItems) > 0 {
		return student.ProgressItems
	}
	return model.DefaultProgressItems()
}

func (s *Server) handleTeacherProgress(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	student, err := s.ownedStudent(r, principal, chi.URLParam(r, "studentID"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": progressOrDefault(student)})
}

type replaceProgressRequest struct {
	Items []model.ProgressItem `json:"items"`
}

func (s *Server) handleReplaceProgress(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	studentID := chi.URLParam(r, "studentID")

	var req replaceProgressRequest
	if err := decodeJSON(r, &req); err != nil || req.Items == nil {
		s.writeAppError(w, r, apperr.Invalid("items[] required"))
		return
	}

	teacherID := principal.ID
	if principal.IsAdmin() {
		teacherID = ""
	}
	if err := s.store.UpdateProgressItems(r.Context(), studentID, teacherID, req.Items); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.writeAppError(w, r, apperr.NotFound("student not found"))
			return
		}
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": req.Items})
}
