// Package auth holds the admin login gate.
package auth

import (
	"crypto/subtle"

	"github.com/Shivanand-hulikatti/salon-booking/internal/config"
)

// Gate matches submitted credentials against a fixed allow-list.
// Passwords are compared in plaintext; there is no lockout or rate limit.
type Gate struct {
	admins []config.Admin
}

// NewGate copies the allow-list so later changes to the slice do not leak in.
func NewGate(admins []config.Admin) *Gate {
	return &Gate{admins: append([]config.Admin(nil), admins...)}
}

// Check reports whether username/password matches an allow-list entry.
func (g *Gate) Check(username, password string) bool {
	matched := 0
	for _, a := range g.admins {
		userOK := subtle.ConstantTimeCompare([]byte(a.User), []byte(username))
		passOK := subtle.ConstantTimeCompare([]byte(a.Pass), []byte(password))
		matched |= userOK & passOK
	}
	return matched == 1
}
