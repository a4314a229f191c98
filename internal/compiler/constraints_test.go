package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConstraints(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "design.sdc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write constraints: %v", err)
	}
	return path
}

func TestLoadConstraintsSeparatesKeeps(t *testing.T) {
	path := writeConstraints(t, `
# clock constraints
create_clock -period 2 clk
keep net_a net_b
set_keep net_c
set_pin_loc in1 A4
`)
	cons, err := LoadConstraints([]string{path})
	if err != nil {
		t.Fatalf("LoadConstraints: %v", err)
	}
	keeps := cons.Keeps()
	if len(keeps) != 3 || keeps[0] != "net_a" || keeps[2] != "net_c" {
		t.Errorf("keeps = %v, want [net_a net_b net_c]", keeps)
	}
	lines := cons.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want 2 entries", lines)
	}
	if lines[0] != "create_clock -period 2 clk" {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestVprSDCDropsPinLocations(t *testing.T) {
	path := writeConstraints(t, `
create_clock -period 2 clk
set_pin_loc in1 A4
set_pin_loc out1 B2
`)
	cons, err := LoadConstraints([]string{path})
	if err != nil {
		t.Fatalf("LoadConstraints: %v", err)
	}
	sdc := cons.VprSDC()
	if strings.Contains(sdc, "set_pin_loc") {
		t.Errorf("sdc still contains pin locations:\n%s", sdc)
	}
	if !strings.Contains(sdc, "create_clock -period 2 clk") {
		t.Errorf("sdc lost the clock constraint:\n%s", sdc)
	}
}

func TestLoadConstraintsMissingFile(t *testing.T) {
	if _, err := LoadConstraints([]string{"/no/such/file.sdc"}); err == nil {
		t.Fatal("expected error for missing constraint file")
	}
}
