package textproc

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"allow-set", "Meeting!! @ 5pm #1234", "Meeting @ 5pm #1234"},
		{"kept punctuation", "3/5, 10:00 @ cafe.example #go event-day", "3/5, 10:00 @ cafe.example #go event-day"},
		{"noise glyphs", "Ev*ent% [Friday]", "Event Friday"},
		{"whitespace runs", "  Team \t Sync \n\n Friday  ", "Team Sync Friday"},
		{"only noise", "***!!??", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Normalize(c.in)
			if got != c.want {
				t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
			}
			if again := Normalize(got); again != got {
				t.Fatalf("not idempotent: Normalize(%q) = %q", got, again)
			}
		})
	}
}
