package details

import (
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	k := Key("wa_dnr", "12843", false)
	if !strings.HasPrefix(k, "details:wa_dnr:12843:geom=0:f=") {
		t.Errorf("key = %q", k)
	}
}

func TestKeyDistinguishesGeomFlag(t *testing.T) {
	if Key("s", "1", false) == Key("s", "1", true) {
		t.Error("geom flag must produce distinct keys")
	}
}

func TestKeyDistinctAfterSanitization(t *testing.T) {
	// both identities sanitize to the same readable text; the hash
	// suffix must still keep them apart
	a := Key("wa dnr", "1", false)
	b := Key("wa_dnr", "1", false)
	if a == b {
		t.Errorf("keys collide: %q", a)
	}
}

func TestKeySanitizesAndTruncates(t *testing.T) {
	k := Key("bad source!", strings.Repeat("x", 300), false)
	if strings.ContainsAny(k, " !") {
		t.Errorf("key carries unsanitized characters: %q", k)
	}
	if len(k) > 170 {
		t.Errorf("key too long (%d): %q", len(k), k)
	}
}
