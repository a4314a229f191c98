package compiler

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Constraints holds the design constraints collected from the configured
// constraint files: the raw SDC-style lines plus the signal names marked to
// survive synthesis.
type Constraints struct {
	lines []string
	keeps []string
}

// LoadConstraints reads the constraint files in order. Blank lines and
// `#` comments are dropped; `keep` / `set_keep` directives are collected
// separately and excluded from the SDC stream.
func LoadConstraints(paths []string) (*Constraints, error) {
	c := &Constraints{}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("constraint file: %w", err)
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields := strings.Fields(line)
			if fields[0] == "keep" || fields[0] == "set_keep" {
				c.keeps = append(c.keeps, fields[1:]...)
				continue
			}
			c.lines = append(c.lines, line)
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("constraint file %s: %w", path, err)
		}
	}
	return c, nil
}

// Keeps lists signal names that must keep their nets through synthesis.
func (c *Constraints) Keeps() []string { return c.keeps }

// Lines returns every retained constraint line.
func (c *Constraints) Lines() []string { return c.lines }

// VprSDC renders the constraints the place-and-route tool understands.
// Pin location constraints are placement directives, not timing, and are
// filtered out.
func (c *Constraints) VprSDC() string {
	var b strings.Builder
	for _, line := range c.lines {
		if strings.Contains(line, "set_pin_loc") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
