package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  string
	}{
		{"john.doe@u.example.edu", "john.doe"},
		{"a@b.edu", "a"},
		{"weird@with@ats.edu", "weird"},
		{"noat", "noat"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AccountName(tt.email), "email %q", tt.email)
	}
}

func TestAccountName_Deterministic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, AccountName("john.doe@u.example.edu"), AccountName("john.doe@u.example.edu"))
}

func TestResultHelpers(t *testing.T) {
	t.Parallel()

	e := Errorf("a@b.edu", "a", "boom")
	assert.Equal(t, StatusError, e.Status)
	assert.Equal(t, "boom", e.Err)
	assert.Equal(t, "a", e.Account)

	s := Skipped("", "", "no email")
	assert.Equal(t, StatusSkipped, s.Status)
	assert.Equal(t, "no email", s.Err)
}
