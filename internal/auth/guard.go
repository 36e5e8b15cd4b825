package auth

import "github.com/FaridaNelson/sp-server/internal/apperr"

// Require passes when the principal holds at least one of the allowed
// roles. An empty allowed set means any authenticated principal. The
// check is a set intersection, not an equality check: a principal may
// hold several roles.
func Require(p *Principal, allowed ...string) error {
	if p == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if p.HasRole(role) {
			return nil
		}
	}
	// have/need is diagnostic output for the caller, never an input to
	// any authorization decision.
	return apperr.Forbidden("role required").WithFields(map[string]any{
		"have": p.Roles,
		"need": allowed,
	})
}
