package compiler

import "testing"

func TestExpandScriptResolvesInOrder(t *testing.T) {
	script, err := expandScript("a ${ONE} ${TWO}", []Replacement{
		{"${ONE}", "${TWO}"},
		{"${TWO}", "b"},
	})
	if err != nil {
		t.Fatalf("expandScript: %v", err)
	}
	if script != "a b b" {
		t.Errorf("script = %q, want %q", script, "a b b")
	}
}

func TestExpandScriptRejectsLeftoverPlaceholder(t *testing.T) {
	_, err := expandScript("read_verilog ${FILES}", nil)
	if err == nil {
		t.Fatal("expected error for unresolved placeholder")
	}
	if got := err.Error(); got != "unresolved placeholder ${FILES}" {
		t.Errorf("unexpected error %q", got)
	}
}
