package http

import (
	"net/http"
	"testing"

	"github.com/FaridaNelson/sp-server/internal/auth"
	"github.com/FaridaNelson/sp-server/internal/model"
)

func TestParentProgressAccess(t *testing.T) {
	store := newFakeStore()
	server := newTestServer(store)
	router := server.Router()

	teacher := seedTeacher(store, "t1", "t1@x.com")
	linked := seedStudent(store, teacher.ID, "Clara", "AB12CD34")
	other := seedStudent(store, teacher.ID, "Max", "EF56GH78")

	parentToken := tokenFor(t, server, &auth.Principal{
		ID:        "p1",
		Role:      model.RoleParent,
		Roles:     []string{model.RoleParent},
		StudentID: &linked.ID,
	})

	rec := doReq(t, router, http.MethodGet, "/api/parent/students/"+linked.ID+"/progress", parentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for linked student, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload progressPayload
	decodeBody(t, rec, &payload)
	if len(payload.Items) != 6 {
		t.Fatalf("expected stock items for a fresh student, got %d", len(payload.Items))
	}

	// any other student id is denied outright, even a sibling under the
	// same teacher
	rec = doReq(t, router, http.MethodGet, "/api/parent/students/"+other.ID+"/progress", parentToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an unlinked student, got %d", rec.Code)
	}

	// a parent with no linkage at all is denied the same way
	unlinkedToken := tokenFor(t, server, &auth.Principal{
		ID:    "p2",
		Role:  model.RoleParent,
		Roles: []string{model.RoleParent},
	})
	rec = doReq(t, router, http.MethodGet, "/api/parent/students/"+linked.ID+"/progress", unlinkedToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without linkage, got %d", rec.Code)
	}

	// teachers do not pass the parent route's role guard
	teacherToken := tokenFor(t, server, auth.PrincipalFromUser(teacher))
	rec = doReq(t, router, http.MethodGet, "/api/parent/students/"+linked.ID+"/progress", teacherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for teacher on parent route, got %d", rec.Code)
	}
}

func TestParentProgressAdminBypass(t *testing.T) {
	store := newFakeStore()
	server := newTestServer(store)
	router := server.Router()

	teacher := seedTeacher(store, "t1", "t1@x.com")
	student := seedStudent(store, teacher.ID, "Clara", "AB12CD34")

	adminToken := tokenFor(t, server, &auth.Principal{ID: "a1", Role: model.RoleAdmin, Roles: []string{model.RoleAdmin}})

	rec := doReq(t, router, http.MethodGet, "/api/parent/students/"+student.ID+"/progress", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}

	// the admin path is a plain lookup, so an unknown id is 404
	rec = doReq(t, router, http.MethodGet, "/api/parent/students/no-such-id/progress", adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing student, got %d", rec.Code)
	}
}
