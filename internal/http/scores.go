package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FaridaNelson/sp-server/internal/apperr"
	"github.com/FaridaNelson/sp-server/internal/metrics"
	"github.com/FaridaNelson/sp-server/internal/model"
	"github.com/FaridaNelson/sp-server/internal/observability"
)

const (
	historyDefaultLimit = 20
	historyMaxLimit     = 100
)

// scoreEntryRequest tolerates both naming generations of the payload:
// itemId/itemLabel/value and elementId/elementLabel/score.
type scoreEntryRequest struct {
	ItemID       string  `json:"itemId"`
	ElementID    string  `json:"elementId"`
	ItemLabel    *string `json:"itemLabel"`
	ElementLabel *string `json:"elementLabel"`
	Value        *int    `json:"value"`
	Score        *int    `json:"score"`
	TempoCurrent *int    `json:"tempoCurrent"`
	TempoGoal    *int    `json:"tempoGoal"`
	Dynamics     *string `json:"dynamics"`
	Articulation *string `json:"articulation"`
	LessonDate   string  `json:"lessonDate"`
}

func (e scoreEntryRequest) elementID() string {
	if e.ItemID != "" {
		return e.ItemID
	}
	return e.ElementID
}

func (e scoreEntryRequest) label() *string {
	if e.ItemLabel != nil {
		return e.ItemLabel
	}
	return e.ElementLabel
}

func (e scoreEntryRequest) scoreValue() *int {
	if e.Value != nil {
		return e.Value
	}
	return e.Score
}

func parseLessonDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

type recordScoresRequest struct {
	Entries []scoreEntryRequest `json:"entries"`
}

// handleRecordScores appends a batch of graded curriculum elements for
// one lesson. Validation is all-or-nothing: one bad entry rejects the
// whole batch before anything is written.
func (s *Server) handleRecordScores(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	student, err := s.ownedStudent(r, principal, chi.URLParam(r, "studentID"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	var req recordScoresRequest
	if err := decodeJSON(r, &req); err != nil || len(req.Entries) == 0 {
		s.writeAppError(w, r, apperr.Invalid("entries[] required"))
		return
	}

	now := time.Now().UTC()
	entries := make([]model.ScoreEntry, 0, len(req.Entries))
	for i, e := range req.Entries {
		elementID := e.elementID()
		if !model.KnownElement(elementID) {
			s.writeAppError(w, r, apperr.Invalid(fmt.Sprintf("entries[%d]: unrecognized curriculum element", i)))
			return
		}
		if e.LessonDate == "" {
			s.writeAppError(w, r, apperr.Invalid(fmt.Sprintf("entries[%d]: lessonDate is required", i)))
			return
		}
		lessonDate, err := parseLessonDate(e.LessonDate)
		if err != nil {
			s.writeAppError(w, r, apperr.Invalid(fmt.Sprintf("entries[%d]: invalid lessonDate", i)))
			return
		}
		score := e.scoreValue()
		if score != nil && (*score < 0 || *score > 100) {
			s.writeAppError(w, r, apperr.Invalid(fmt.Sprintf("entries[%d]: score must be between 0 and 100", i)))
			return
		}

		entries = append(entries, model.ScoreEntry{
			ID:           uuid.NewString(),
			TeacherID:    student.TeacherID,
			StudentID:    student.ID,
			LessonDate:   lessonDate,
			ElementID:    elementID,
			ElementLabel: e.label(),
			Score:        score,
			TempoCurrent: e.TempoCurrent,
			TempoGoal:    e.TempoGoal,
			Dynamics:     e.Dynamics,
			Articulation: e.Articulation,
			CreatedAt:    now,
		})
	}

	if err := s.store.InsertScoreEntries(r.Context(), entries); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	metrics.ScoreEntries.Add(float64(len(entries)))

	// The log write above is authoritative; the cached per-item scores
	// on the student are advisory and refreshed best-effort. A failure
	// here is reported to operators, never to the caller, and the
	// entries are not rolled back.
	s.refreshProgressCache(r, student, entries)

	responses := make([]scoreEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, responseFromEntry(entry))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entries": responses})
}

func (s *Server) refreshProgressCache(r *http.Request, student model.Student, entries []model.ScoreEntry) {
	items := progressOrDefault(student)
	changed := false
	for _, entry := range entries {
		if entry.Score == nil {
			continue
		}
		for i := range items {
			if items[i].ID == entry.ElementID {
				items[i].Score = *entry.Score
				changed = true
			}
		}
	}
	if !changed {
		return
	}

	if err := s.store.UpdateProgressItems(r.Context(), student.ID, "", items); err != nil {
		metrics.ProgressSyncFailures.Inc()
		observability.CaptureErr(err)
		s.logger.Warn("progress cache refresh failed",
			zap.String("student_id", student.ID),
			zap.Error(err),
		)
	}
}

type scoreEntryResponse struct {
	ID           string  `json:"id"`
	TeacherID    string  `json:"teacherId"`
	StudentID    string  `json:"studentId"`
	LessonDate   string  `json:"lessonDate"`
	ElementID    string  `json:"elementId"`
	ElementLabel *string `json:"elementLabel,omitempty"`
	Score        *int    `json:"score,omitempty"`
	TempoCurrent *int    `json:"tempoCurrent,omitempty"`
	TempoGoal    *int    `json:"tempoGoal,omitempty"`
	Dynamics     *string `json:"dynamics,omitempty"`
	Articulation *string `json:"articulation,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func responseFromEntry(entry model.ScoreEntry) scoreEntryResponse {
	return scoreEntryResponse{
		ID:           entry.ID,
		TeacherID:    entry.TeacherID,
		StudentID:    entry.StudentID,
		LessonDate:   entry.LessonDate.Format("2006-01-02"),
		ElementID:    entry.ElementID,
		ElementLabel: entry.ElementLabel,
		Score:        entry.Score,
		TempoCurrent: entry.TempoCurrent,
		TempoGoal:    entry.TempoGoal,
		Dynamics:     entry.Dynamics,
		Articulation: entry.Articulation,
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	student, err := s.ownedStudent(r, principal, chi.URLParam(r, "studentID"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	limit := historyDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	// server-side clamp regardless of what the client asked for
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 1 {
			page = parsed
		}
	}

	entries, total, err := s.store.ListScoreEntries(r.Context(), student.ID, student.TeacherID, limit, (page-1)*limit)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	items := make([]scoreEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, responseFromEntry(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": (total + limit - 1) / limit,
	})
}
