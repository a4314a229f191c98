package compiler

import (
	"os"
	"time"
)

// designChanged compares every design input against the synthesized
// netlist. A missing netlist or input forces a rerun; an input newer than
// the netlist forces a rerun.
func designChanged(c *Compiler) bool {
	fi, err := os.Stat(c.RunPath(c.ProjectName() + "_post_synth.blif"))
	if err != nil {
		return true
	}
	netlistTime := fi.ModTime()

	var inputs []string
	for _, df := range c.cfg.Project.DesignFiles {
		inputs = append(inputs, c.Resolve(df.Path))
	}
	for _, p := range c.cfg.Project.IncludePaths {
		inputs = append(inputs, c.Resolve(p))
	}
	for _, p := range c.cfg.Project.LibraryPaths {
		inputs = append(inputs, c.Resolve(p))
	}
	return anyNewer(inputs, netlistTime)
}

func anyNewer(paths []string, ref time.Time) bool {
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return true
		}
		if fi.ModTime().After(ref) {
			return true
		}
	}
	return false
}

// scriptChanged byte-compares the freshly rendered script against the one
// written by the previous run.
func scriptChanged(path, fresh string) bool {
	prev, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return string(prev) != fresh
}
