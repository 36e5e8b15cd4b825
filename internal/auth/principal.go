package auth

import "github.com/FaridaNelson/sp-server/internal/model"

// Principal is the normalized, request-scoped identity derived from a
// verified credential. Constructed fresh per request, never persisted.
type Principal struct {
	ID        string
	Name      string
	Email     string
	Role      string
	Roles     []string
	TeacherID *string
	StudentID *string
	ParentID  *string
}

// NewPrincipal collapses the role/roles claim drift into one canonical
// {primary role, role set} pair. Normalization happens here once;
// nothing downstream re-interprets claims.
func NewPrincipal(claims *Claims) *Principal {
	p := &Principal{
		ID:        claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      claims.Role,
		Roles:     claims.Roles,
		TeacherID: claims.TeacherID,
		StudentID: claims.StudentID,
		ParentID:  claims.ParentID,
	}
	if len(p.Roles) == 0 && p.Role != "" {
		p.Roles = []string{p.Role}
	}
	if p.Role == "" && len(p.Roles) > 0 {
		p.Role = p.Roles[0]
	}
	if p.Roles == nil {
		p.Roles = []string{}
	}
	return p
}

// PrincipalFromUser builds a principal straight from a stored user,
// used at login/signup and when optional auth reconciles a token
// against the credential store.
func PrincipalFromUser(u model.User) *Principal {
	return &Principal{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.PrimaryRole(),
		Roles:     append([]string{}, u.Roles...),
		TeacherID: u.TeacherID,
		StudentID: u.StudentID,
		ParentID:  u.ParentID,
	}
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool { return p.HasRole(model.RoleAdmin) }
