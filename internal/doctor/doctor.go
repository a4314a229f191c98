// Package doctor inspects the environment the flow depends on: the external
// tools, their versions, and the files and directories a run will touch.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/jaa/fpgaflow/internal/config"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Check struct {
	Severity Severity `json:"severity"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) HasErrors() bool {
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r Report) ErrorCount() int {
	count := 0
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			count++
		}
	}
	return count
}

// Checker runs the environment checks. The func fields default to the real
// implementations and are swapped out in tests.
type Checker struct {
	LookPath      func(string) (string, error)
	ReadVersion   func(context.Context, string) (string, error)
	CheckWritable func(string) error
	CheckReadable func(string) error
}

func NewChecker() *Checker {
	return &Checker{
		LookPath:      exec.LookPath,
		ReadVersion:   defaultReadVersion,
		CheckWritable: checkDirWritable,
		CheckReadable: checkFileReadable,
	}
}

// Check verifies the configured toolchain and project paths.
func (c *Checker) Check(ctx context.Context, cfg config.Config) Report {
	report := Report{Checks: []Check{}}

	for _, tool := range requiredTools(cfg) {
		report.Checks = append(report.Checks, c.toolChecks(ctx, tool)...)
	}

	if cfg.Project.Dir != "" {
		if err := c.CheckWritable(cfg.Project.Dir); err != nil {
			report.Checks = append(report.Checks, Check{
				Severity: SeverityError,
				Name:     "filesystem",
				Message:  fmt.Sprintf("project dir is not writable: %v", err),
			})
		} else {
			report.Checks = append(report.Checks, Check{
				Severity: SeverityInfo,
				Name:     "filesystem",
				Message:  "project dir is writable",
			})
		}
	}

	for _, arch := range requiredFiles(cfg) {
		path := arch.path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Project.Dir, path)
		}
		if err := c.CheckReadable(path); err != nil {
			report.Checks = append(report.Checks, Check{
				Severity: SeverityError,
				Name:     "filesystem",
				Message:  fmt.Sprintf("%s is not readable: %v", arch.what, err),
			})
		} else {
			report.Checks = append(report.Checks, Check{
				Severity: SeverityInfo,
				Name:     "filesystem",
				Message:  fmt.Sprintf("%s is readable", arch.what),
			})
		}
	}

	if len(cfg.Project.DesignFiles) == 0 {
		report.Checks = append(report.Checks, Check{
			Severity: SeverityWarn,
			Name:     "config",
			Message:  "no design files configured",
		})
	}

	return report
}

func (c *Checker) toolChecks(ctx context.Context, tool requiredTool) []Check {
	location, err := c.LookPath(tool.Path)
	if err != nil {
		return []Check{{
			Severity: SeverityError,
			Name:     "toolchain",
			Message:  fmt.Sprintf("%s not found: %s", tool.Name, tool.Path),
		}}
	}
	checks := []Check{{
		Severity: SeverityInfo,
		Name:     "toolchain",
		Message:  fmt.Sprintf("%s found at %s", tool.Name, location),
	}}

	output, err := c.ReadVersion(ctx, location)
	if err != nil {
		return append(checks, Check{
			Severity: SeverityWarn,
			Name:     "toolchain",
			Message:  fmt.Sprintf("%s version could not be read: %v", tool.Name, err),
		})
	}
	version, err := extractVersion(output)
	if err != nil {
		return append(checks, Check{
			Severity: SeverityWarn,
			Name:     "toolchain",
			Message:  fmt.Sprintf("%s version output is unrecognized: %q", tool.Name, strings.TrimSpace(output)),
		})
	}

	if tool.MinVersion == "" {
		return append(checks, Check{
			Severity: SeverityInfo,
			Name:     "toolchain",
			Message:  fmt.Sprintf("%s version %s", tool.Name, version),
		})
	}
	min, err := semver.NewVersion(tool.MinVersion)
	if err != nil {
		return append(checks, Check{
			Severity: SeverityWarn,
			Name:     "toolchain",
			Message:  fmt.Sprintf("%s min_version %q is not a valid version", tool.Name, tool.MinVersion),
		})
	}
	if version.LessThan(min) {
		return append(checks, Check{
			Severity: SeverityError,
			Name:     "toolchain",
			Message:  fmt.Sprintf("%s version %s is below minimum %s", tool.Name, version, min),
		})
	}
	return append(checks, Check{
		Severity: SeverityInfo,
		Name:     "toolchain",
		Message:  fmt.Sprintf("%s version %s satisfies minimum %s", tool.Name, version, min),
	})
}

type requiredTool struct {
	Name       string
	Path       string
	MinVersion string
}

func requiredTools(cfg config.Config) []requiredTool {
	tools := []requiredTool{
		{Name: "yosys", Path: cfg.Tools.Yosys.Path, MinVersion: cfg.Tools.Yosys.MinVersion},
		{Name: "vpr", Path: cfg.Tools.Vpr.Path, MinVersion: cfg.Tools.Vpr.MinVersion},
	}
	if cfg.Stages.Bitstream.Enabled {
		tools = append(tools, requiredTool{
			Name:       "openfpga",
			Path:       cfg.Tools.OpenFPGA.Path,
			MinVersion: cfg.Tools.OpenFPGA.MinVersion,
		})
	}
	if cfg.Stages.Timing.Engine == config.TimingEngineOpensta {
		tools = append(tools, requiredTool{
			Name:       "sta",
			Path:       cfg.Tools.Sta.Path,
			MinVersion: cfg.Tools.Sta.MinVersion,
		})
	}
	return tools
}

type requiredFile struct {
	what string
	path string
}

func requiredFiles(cfg config.Config) []requiredFile {
	var files []requiredFile
	if cfg.Architecture.VprArch != "" {
		files = append(files, requiredFile{"vpr architecture file", cfg.Architecture.VprArch})
	}
	if cfg.Stages.Bitstream.Enabled && cfg.Architecture.OpenFPGAArch != "" {
		files = append(files, requiredFile{"openfpga architecture file", cfg.Architecture.OpenFPGAArch})
	}
	if cfg.Tools.DeviceTable != "" {
		files = append(files, requiredFile{"device table", cfg.Tools.DeviceTable})
	}
	for _, cons := range cfg.Project.ConstraintFiles {
		files = append(files, requiredFile{fmt.Sprintf("constraint file %s", cons), cons})
	}
	return files
}

func defaultReadVersion(ctx context.Context, binary string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func checkDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	file, err := os.CreateTemp(path, ".fpgaflow-write-check-*")
	if err != nil {
		return err
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return nil
}

func checkFileReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// extractVersion pulls the first version-looking token out of tool output.
// vpr reports two-component versions, so the patch part is optional.
func extractVersion(raw string) (*semver.Version, error) {
	matches := versionPattern.FindStringSubmatch(raw)
	if matches == nil {
		return nil, fmt.Errorf("no version found")
	}
	patch := matches[3]
	if patch == "" {
		patch = "0"
	}
	return semver.NewVersion(fmt.Sprintf("%s.%s.%s", matches[1], matches[2], patch))
}
