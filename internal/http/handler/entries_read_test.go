package handler

import "testing"

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "park", want: "park"},
		{name: "empty", in: "", want: ""},
		{name: "percent", in: "100%", want: `100\%`},
		{name: "underscore", in: "a_b", want: `a\_b`},
		{name: "backslash", in: `a\b`, want: `a\\b`},
		{name: "wildcard only", in: "%", want: `\%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeLike(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
