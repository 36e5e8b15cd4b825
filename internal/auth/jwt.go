package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const defaultLifetimeDays = 7

// Config is injected at construction time; there is no package-level
// secret. An empty secret is a deployment misconfiguration, not a
// runtime error.
type Config struct {
	Secret       string
	Issuer       string
	LifetimeDays int
}

// Claims is the wire shape of a session token. Legacy tokens may carry
// only a singular role or only a roles array; NewPrincipal collapses
// the two at resolution time.
type Claims struct {
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Role      string   `json:"role,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	TeacherID *string  `json:"teacherId,omitempty"`
	StudentID *string  `json:"studentId,omitempty"`
	ParentID  *string  `json:"parentId,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens. Verification is stateless:
// a role change becomes visible only after re-issuance, unless the
// identity resolver reconciles against the credential store.
type Codec struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
}

func NewCodec(cfg Config) *Codec {
	days := cfg.LifetimeDays
	if days <= 0 {
		days = defaultLifetimeDays
	}
	return &Codec{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		lifetime: time.Duration(days) * 24 * time.Hour,
	}
}

// Lifetime is the validity window of issued tokens; the session cookie
// expiry matches it.
func (c *Codec) Lifetime() time.Duration { return c.lifetime }

func (c *Codec) Issue(p *Principal) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role,
		Roles:     p.Roles,
		TeacherID: p.TeacherID,
		StudentID: p.StudentID,
		ParentID:  p.ParentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry. It fails only for structurally
// invalid input; every failure mode collapses into ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
