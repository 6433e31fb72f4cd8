package login

import (
	"crypto/sha256"
	"testing"
)

func TestMatcher(t *testing.T) {
	m := NewMatcher("Chief@Desk.example", "correct horse battery staple")

	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"exact", "Chief@Desk.example", "correct horse battery staple", true},
		{"email case and spaces", "  chief@desk.EXAMPLE ", "correct horse battery staple", true},
		{"wrong password", "chief@desk.example", "correct horse battery stapler", false},
		{"wrong email", "editor@desk.example", "correct horse battery staple", false},
		{"both wrong", "x@y.z", "nope", false},
		{"password prefix", "chief@desk.example", "correct", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.email, tt.password); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The work done per comparison must not depend on which field mismatches or
// where the first differing byte is.
func TestMatcherDigestCount(t *testing.T) {
	m := NewMatcher("chief@desk.example", "hunter2hunter2")

	calls := 0
	m.digest = func(b []byte) [sha256.Size]byte {
		calls++
		return sha256.Sum256(b)
	}

	inputs := []struct{ email, password string }{
		{"chief@desk.example", "hunter2hunter2"},
		{"xhief@desk.example", "hunter2hunter2"},
		{"chief@desk.examplx", "hunter2hunter2"},
		{"chief@desk.example", "xunter2hunter2"},
		{"chief@desk.example", "hunter2hunter"},
		{"a", "b"},
	}
	for _, in := range inputs {
		calls = 0
		m.Match(in.email, in.password)
		if calls != 2 {
			t.Errorf("Match(%q, %q) computed %d digests, want 2", in.email, in.password, calls)
		}
	}
}
