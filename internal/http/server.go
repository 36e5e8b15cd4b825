package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/FaridaNelson/sp-server/internal/apperr"
	"github.com/FaridaNelson/sp-server/internal/auth"
	"github.com/FaridaNelson/sp-server/internal/config"
	"github.com/FaridaNelson/sp-server/internal/metrics"
	"github.com/FaridaNelson/sp-server/internal/model"
	"github.com/FaridaNelson/sp-server/internal/soundslice"
)

// Store is the slice of the persistence layer the handlers consume.
// Implemented by *repository.Store; tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)

	CreateStudent(ctx context.Context, student model.Student) error
	ListStudentsByTeacher(ctx context.Context, teacherID string) ([]model.Student, error)
	GetStudent(ctx context.Context, studentID string) (model.Student, error)
	GetStudentForTeacher(ctx context.Context, studentID, teacherID string) (model.Student, error)
	GetStudentByInviteCode(ctx context.Context, code string) (model.Student, error)
	UpdateProgressItems(ctx context.Context, studentID, teacherID string, items []model.ProgressItem) error

	InsertScoreEntries(ctx context.Context, entries []model.ScoreEntry) error
	ListScoreEntries(ctx context.Context, studentID, teacherID string, limit, offset int) ([]model.ScoreEntry, int, error)
}

type Server struct {
	cfg    config.Config
	store  Store
	codec  *auth.Codec
	sound  *soundslice.Client
	logger *zap.Logger
}

func NewServer(cfg config.Config, store Store, codec *auth.Codec, sound *soundslice.Client, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, store: store, codec: codec, sound: sound, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.With(s.optionalAuth).Get("/me", s.handleMe)
			r.Post("/logout", s.handleLogout)
		})

		r.Route("/teacher", func(r chi.Router) {
			r.Use(s.requireAuth, s.requireRole(model.RoleTeacher, model.RoleAdmin))
			r.Get("/students", s.handleListStudents)
			r.Post("/students", s.handleCreateStudent)
			r.Get("/students/{studentID}/progress", s.handleTeacherProgress)
			r.Post("/students/{studentID}/progress", s.handleReplaceProgress)
			r.Post("/students/{studentID}/scores", s.handleRecordScores)
			r.Get("/students/{studentID}/scores", s.handleScoreHistory)
		})

		r.Route("/parent", func(r chi.Router) {
			r.Use(s.requireAuth, s.requireRole(model.RoleParent, model.RoleAdmin))
			r.Get("/students/{studentID}/progress", s.handleParentProgress)
		})

		r.Route("/soundslice", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/daily", s.handleDailySlice)
		})
	})

	return r
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Add("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func decodeJSON(r *http.Request, out interface{}) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeAppError maps any error onto the response taxonomy. Internal
// detail goes to the operator log; outside development mode the client
// only ever sees the single-field message.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	payload := map[string]any{"error": appErr.Message}
	for key, value := range appErr.Fields {
		payload[key] = value
	}
	if !s.cfg.Production() && appErr.Status >= http.StatusInternalServerError && appErr.Unwrap() != nil {
		payload["detail"] = appErr.Unwrap().Error()
	}
	writeJSON(w, appErr.Status, payload)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
