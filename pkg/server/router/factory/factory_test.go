package factory

import "testing"

func TestNewRouterTypes(t *testing.T) {
	for _, rt := range []string{"", "gin", "GIN", "gorilla", " gorilla "} {
		r, err := NewRouter(rt)
		if err != nil {
			t.Fatalf("NewRouter(%q): %v", rt, err)
		}
		if r == nil {
			t.Fatalf("NewRouter(%q) returned nil router", rt)
		}
	}
}

func TestNewRouterUnsupported(t *testing.T) {
	if _, err := NewRouter("echo"); err == nil {
		t.Fatal("expected error for unsupported router type")
	}
}

func TestSupportedTypesSorted(t *testing.T) {
	types := SupportedTypes()
	if len(types) != 2 || types[0] != "gin" || types[1] != "gorilla" {
		t.Fatalf("unexpected supported types: %v", types)
	}
}
