package ids

import "testing"

func TestNext(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		prefix   string
		want     string
	}{
		{"empty", nil, "F", "F0001"},
		{"max plus one", []string{"F0001", "F0007", "F0003"}, "F", "F0008"},
		{"other prefix ignored", []string{"H0009", "F0002"}, "F", "F0003"},
		{"garbage suffix ignored", []string{"Fxyz", "F", "A0004"}, "A", "A0005"},
		{"wide numbers", []string{"H9999"}, "H", "H10000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Next(tc.existing, tc.prefix); got != tc.want {
				t.Fatalf("Next(%v, %q) = %q, want %q", tc.existing, tc.prefix, got, tc.want)
			}
		})
	}
}

func TestSequencerSharedAcrossCalls(t *testing.T) {
	s := NewSequencer()
	s.Seed("A", []string{"A0002"})
	if got := s.Next("A"); got != "A0003" {
		t.Fatalf("first: %q", got)
	}
	if got := s.Next("A"); got != "A0004" {
		t.Fatalf("second: %q", got)
	}
	if got := s.Next("F"); got != "F0001" {
		t.Fatalf("independent prefix: %q", got)
	}
	// seeding lower than the current counter never rewinds
	s.Seed("A", []string{"A0001"})
	if got := s.Next("A"); got != "A0005" {
		t.Fatalf("after reseed: %q", got)
	}
}
