package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/FaridaNelson/sp-server/internal/apperr"
)

// handleParentProgress is the parent-linked resource rule: a parent may
// read progress only for the one student its signup linked it to. The
// linkage is fixed at signup and never re-resolved. Unlike the
// teacher-owned rule this denial discloses existence (403, not 404)
// since the parent already knows the student id it tried.
func (s *Server) handleParentProgress(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	studentID := chi.URLParam(r, "studentID")

	if !principal.IsAdmin() {
		if principal.StudentID == nil || *principal.StudentID != studentID {
			s.writeAppError(w, r, apperr.Forbidden("forbidden"))
			return
		}
	}

	student, err := s.store.GetStudent(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.writeAppError(w, r, apperr.NotFound("student not found"))
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": progressOrDefault(student)})
}
