package repository

import "testing"

func TestFoldSearch(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pérez", "perez"},
		{"GARCÍA", "garcia"},
		{"Núñez", "nunez"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := foldSearch(tc.in); got != tc.want {
			t.Errorf("foldSearch(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchesQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields []string
		want   bool
	}{
		{"empty query matches", "", []string{"whatever"}, true},
		{"substring match", "garc", []string{"María García"}, true},
		{"accent folded both ways", "pérez", []string{"Laura Perez"}, true},
		{"second field", "dni", []string{"Laura Pérez", "DNI 10203040"}, true},
		{"no match", "ramirez", []string{"Laura Pérez"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchesQuery(tc.query, tc.fields...); got != tc.want {
				t.Errorf("matchesQuery(%q, %v) = %v, want %v", tc.query, tc.fields, got, tc.want)
			}
		})
	}
}
