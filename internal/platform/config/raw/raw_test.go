package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", " warn ")
	t.Setenv("LOG_FORMAT", "   ")
	c := New().Prefix("LOG_")
	if got := c.Get("LEVEL", "info"); got != "warn" {
		t.Fatalf("got %q", got)
	}
	if got := c.Get("FORMAT", "console"); got != "console" {
		t.Fatalf("blank should fall back, got %q", got)
	}
	if got := New().Get("LOG_LEVEL", ""); got != "warn" {
		t.Fatalf("unprefixed lookup failed, got %q", got)
	}
}

func TestBool(t *testing.T) {
	c := New().Prefix("LOG_")
	cases := map[string]bool{"true": true, "1": true, "YES": true, "false": false, "0": false, "no": false}
	for v, want := range cases {
		t.Setenv("LOG_CALLER", v)
		if got := c.Bool("CALLER", !want); got != want {
			t.Fatalf("%q: got %v", v, got)
		}
	}
	t.Setenv("LOG_CALLER", "maybe")
	if !c.Bool("CALLER", true) {
		t.Fatalf("unparsable value should fall back")
	}
}
