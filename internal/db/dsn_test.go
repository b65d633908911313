package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"url untouched", "postgres://u:p@localhost:5432/pilotage", "postgres://u:p@localhost:5432/pilotage"},
		{"quoted url", `"postgres://u:p@localhost/pilotage"`, "postgres://u:p@localhost/pilotage"},
		{"kv gets sslmode", "host=localhost user=u dbname=pilotage", "host=localhost user=u dbname=pilotage sslmode=disable"},
		{"kv keeps sslmode", "host=localhost sslmode=require", "host=localhost sslmode=require"},
		{"kv whitespace collapsed", "  host=localhost   dbname=pilotage ", "host=localhost dbname=pilotage sslmode=disable"},
		{"empty", "", ""},
		{"opaque passthrough", "not-a-dsn", "not-a-dsn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeDSN(tc.in); got != tc.want {
				t.Fatalf("NormalizeDSN(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	got := MaskDSN("host=localhost password=hunter2 dbname=pilotage")
	want := "host=localhost password=*** dbname=pilotage"
	if got != want {
		t.Fatalf("MaskDSN = %q, want %q", got, want)
	}
	if got := MaskDSN("postgres://u:p@localhost/pilotage"); got != "postgres://u:p@localhost/pilotage" {
		t.Fatalf("url dsn should pass through, got %q", got)
	}
}
