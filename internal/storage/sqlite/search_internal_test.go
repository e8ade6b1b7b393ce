package sqlite

import "testing"

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"solar", `"solar"`},
		{"solar  flares", `"solar" OR "flares"`},
		{`say "hi"`, `"say" OR """hi"""`},
		{"C-3PO (droid)", `"C-3PO" OR "(droid)"`},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.in); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
