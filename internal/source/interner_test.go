package source

import "testing"

func TestInternDeduplicates(t *testing.T) {
	in := NewInterner()
	a := in.Intern("🐷")
	b := in.Intern("🐷")
	if a != b {
		t.Fatalf("same string interned to %d and %d", a, b)
	}
	if a == NoStringID {
		t.Fatal("interned string got the null id")
	}
	s, ok := in.Lookup(a)
	if !ok || s != "🐷" {
		t.Fatalf("lookup = %q (%t)", s, ok)
	}
}

func TestInternIdentifierNormalises(t *testing.T) {
	in := NewInterner()
	composed := in.InternIdentifier("é")  // é
	decomposed := in.InternIdentifier("é") // e + combining acute
	if composed != decomposed {
		t.Fatalf("NFC-equal identifiers interned to %d and %d", composed, decomposed)
	}
}

func TestLookupUnknownID(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(StringID(99)); ok {
		t.Fatal("lookup of unknown id succeeded")
	}
	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatal("null id must resolve to the empty string")
	}
}
