package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/FaridaNelson/sp-server/internal/auth"
	"github.com/FaridaNelson/sp-server/internal/config"
	"github.com/FaridaNelson/sp-server/internal/model"
	"github.com/FaridaNelson/sp-server/internal/repository"
	"github.com/FaridaNelson/sp-server/internal/soundslice"
)

// fakeStore is an in-memory Store with the same miss semantics as the
// pgx-backed one: absent rows surface as pgx.ErrNoRows and unique
// violations as repository.ErrDuplicate.
type fakeStore struct {
	users    map[string]model.User
	students map[string]model.Student
	entries  []model.ScoreEntry

	failProgressUpdate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]model.User{},
		students: map[string]model.Student{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user model.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) && user.DeletedAt == nil {
			return user, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func (f *fakeStore) GetUserByID(_ context.Context, userID string) (model.User, error) {
	user, ok := f.users[userID]
	if !ok || user.DeletedAt != nil {
		return model.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) CreateStudent(_ context.Context, student model.Student) error {
	for _, existing := range f.students {
		if existing.InviteCode == student.InviteCode {
			return repository.ErrDuplicate
		}
	}
	f.students[student.ID] = student
	return nil
}

func (f *fakeStore) ListStudentsByTeacher(_ context.Context, teacherID string) ([]model.Student, error) {
	var students []model.Student
	for _, student := range f.students {
		if student.TeacherID == teacherID {
			students = append(students, student)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students, nil
}

func (f *fakeStore) GetStudent(_ context.Context, studentID string) (model.Student, error) {
	student, ok := f.students[studentID]
	if !ok {
		return model.Student{}, pgx.ErrNoRows
	}
	return student, nil
}

func (f *fakeStore) GetStudentForTeacher(_ context.Context, studentID, teacherID string) (model.Student, error) {
	student, ok := f.students[studentID]
	if !ok || student.TeacherID != teacherID {
		return model.Student{}, pgx.ErrNoRows
	}
	return student, nil
}

func (f *fakeStore) GetStudentByInviteCode(_ context.Context, code string) (model.Student, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, student := range f.students {
		if student.InviteCode == normalized {
			return student, nil
		}
	}
	return model.Student{}, pgx.ErrNoRows
}

func (f *fakeStore) UpdateProgressItems(_ context.Context, studentID, teacherID string, items []model.ProgressItem) error {
	if f.failProgressUpdate {
		return pgx.ErrTxClosed
	}
	student, ok := f.students[studentID]
	if !ok || (teacherID != "" && student.TeacherID != teacherID) {
		return pgx.ErrNoRows
	}
	student.ProgressItems = items
	f.students[studentID] = student
	return nil
}

func (f *fakeStore) InsertScoreEntries(_ context.Context, entries []model.ScoreEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeStore) ListScoreEntries(_ context.Context, studentID, teacherID string, limit, offset int) ([]model.ScoreEntry, int, error) {
	var matched []model.ScoreEntry
	for _, entry := range f.entries {
		if entry.StudentID == studentID && entry.TeacherID == teacherID {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func newTestServer(store Store) *Server {
	cfg := config.Config{
		Env:          "development",
		ClientOrigin: "http://localhost:5173",
	}
	codec := auth.NewCodec(auth.Config{Secret: "test-secret", Issuer: "sp-test", LifetimeDays: 7})
	sound := soundslice.New(soundslice.Config{}, nil)
	return NewServer(cfg, store, codec, sound, zap.NewNop())
}

func seedTeacher(store *fakeStore, id, email string) model.User {
	user := model.User{
		ID:     id,
		Name:   "Teacher " + id,
		Email:  email,
		Roles:  []string{model.RoleTeacher},
		Status: model.StatusActive,
	}
	store.users[user.ID] = user
	return user
}

func seedStudent(store *fakeStore, teacherID, name, inviteCode string) model.Student {
	student := model.Student{
		ID:         uuid.NewString(),
		TeacherID:  teacherID,
		Name:       name,
		InviteCode: inviteCode,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	store.students[student.ID] = student
	return student
}

func tokenFor(t *testing.T, s *Server, p *auth.Principal) string {
	t.Helper()
	token, err := s.codec.Issue(p)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doReq(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(newFakeStore())
	rec := doReq(t, server.Router(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("expected ok, got %q", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(newFakeStore())
	rec := doReq(t, server.Router(), http.MethodOptions, "/api/auth/login", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin %q", origin)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials allowed")
	}
}
