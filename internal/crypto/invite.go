package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// NewInviteCode returns a short code a teacher can read out loud or
// paste into a message. Stored and matched in upper case.
func NewInviteCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
