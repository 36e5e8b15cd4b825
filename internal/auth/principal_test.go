package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/FaridaNelson/sp-server/internal/model"
)

func TestNewPrincipalNormalizesRoleShapes(t *testing.T) {
	tests := []struct {
		name      string
		claims    Claims
		wantRole  string
		wantRoles []string
	}{
		{
			name:      "singular role only",
			claims:    Claims{Role: "teacher"},
			wantRole:  "teacher",
			wantRoles: []string{"teacher"},
		},
		{
			name:      "role set only",
			claims:    Claims{Roles: []string{"admin", "teacher"}},
			wantRole:  "admin",
			wantRoles: []string{"admin", "teacher"},
		},
		{
			name:      "both present, set wins for membership",
			claims:    Claims{Role: "teacher", Roles: []string{"teacher", "admin"}},
			wantRole:  "teacher",
			wantRoles: []string{"teacher", "admin"},
		},
		{
			name:      "neither present",
			claims:    Claims{},
			wantRole:  "",
			wantRoles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.claims.RegisteredClaims = jwt.RegisteredClaims{Subject: "user-1"}
			p := NewPrincipal(&tt.claims)
			assert.Equal(t, "user-1", p.ID)
			assert.Equal(t, tt.wantRole, p.Role)
			assert.Equal(t, tt.wantRoles, p.Roles)
		})
	}
}

func TestPrincipalFromUser(t *testing.T) {
	studentID := "s1"
	u := model.User{
		ID:        "u1",
		Name:      "Pat",
		Email:     "pat@example.com",
		Roles:     []string{"parent"},
		StudentID: &studentID,
	}
	p := PrincipalFromUser(u)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "parent", p.Role)
	assert.Equal(t, []string{"parent"}, p.Roles)
	assert.Equal(t, &studentID, p.StudentID)
}

func TestHasRole(t *testing.T) {
	p := &Principal{Roles: []string{"admin", "teacher"}}
	assert.True(t, p.HasRole("teacher"))
	assert.True(t, p.IsAdmin())
	assert.False(t, p.HasRole("parent"))
}
