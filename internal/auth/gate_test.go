package auth

import (
	"testing"

	"github.com/Shivanand-hulikatti/salon-booking/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestGateCheck(t *testing.T) {
	admins := []config.Admin{{User: "alice", Pass: "s3cret"}, {User: "bob", Pass: "hunter2"}}
	gate := NewGate(admins)

	tests := []struct {
		name     string
		user     string
		pass     string
		expected bool
	}{
		{"first admin", "alice", "s3cret", true},
		{"second admin", "bob", "hunter2", true},
		{"wrong password", "alice", "hunter2", false},
		{"unknown user", "carol", "s3cret", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gate.Check(tt.user, tt.pass))
		})
	}

	// Mutating the caller's slice does not change the gate.
	admins[0].Pass = "changed"
	assert.True(t, gate.Check("alice", "s3cret"))
}

func TestEmptyGateRejectsEverything(t *testing.T) {
	gate := NewGate(nil)
	assert.False(t, gate.Check("", ""))
}
