package banned

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Admin", "admin"},
		{"a.d_m-i.n", "admin"},
		{"", ""},
		{"no_change", "nochange"},
		{"UPPER.CASE", "uppercase"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestFilterUsername(t *testing.T) {
	f := New([]string{"admin", "Root", "p.d.node"}, nil)

	tests := []struct {
		name      string
		candidate string
		banned    bool
	}{
		{"exact match", "admin", true},
		{"case insensitive", "ADMIN", true},
		{"separators stripped", "a.d.m.i.n", true},
		{"substring match", "xX_admin_Xx", true},
		{"banned word itself has separators", "pdnode", true},
		{"clean name", "gopher", false},
		{"partial of banned, not containing", "adm", false},
		{"empty candidate", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.banned, f.Username(tt.candidate))
		})
	}
}

func TestFilterNicknameUsesOwnList(t *testing.T) {
	f := New([]string{"admin"}, []string{"moderator"})

	assert.True(t, f.Nickname("The_Moderator"))
	assert.False(t, f.Nickname("admin"), "username list must not apply to nicknames")
	assert.False(t, f.Username("moderator"))
}

func TestFilterEmptyLists(t *testing.T) {
	f := New(nil, nil)
	assert.False(t, f.Username("anything"))
	assert.False(t, f.Nickname("anything"))
}
