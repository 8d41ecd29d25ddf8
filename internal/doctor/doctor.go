// Package doctor verifies the environment runq needs: a reachable tmux
// server, a usable shell, a valid config and a writable data directory.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/badri/runq/internal/config"
)

type CheckResult struct {
	Name    string
	Status  string // "ok", "warn", "error"
	Message string
}

func Run(configPath string) error {
	results := []CheckResult{
		checkTmux(),
		checkInsideTmux(),
	}
	cfg, res := checkConfig(configPath)
	results = append(results, res)
	if cfg != nil {
		results = append(results, checkShell(cfg.Shell), checkFolder(cfg))
	}
	results = append(results, checkDataDir())

	var hasErrors, hasWarnings bool
	for _, r := range results {
		icon := "✓"
		if r.Status == "warn" {
			icon = "!"
			hasWarnings = true
		} else if r.Status == "error" {
			icon = "✗"
			hasErrors = true
		}
		fmt.Printf("[%s] %s: %s\n", icon, r.Name, r.Message)
	}

	if hasErrors {
		return fmt.Errorf("doctor found errors")
	}
	if hasWarnings {
		fmt.Println("\nSome warnings found. Review the items above.")
	} else {
		fmt.Println("\nAll checks passed!")
	}
	return nil
}

func checkTmux() CheckResult {
	path, err := exec.LookPath("tmux")
	if err != nil {
		return CheckResult{Name: "tmux", Status: "error", Message: "not found in PATH"}
	}
	out, err := exec.Command("tmux", "-V").Output()
	if err != nil {
		return CheckResult{Name: "tmux", Status: "error", Message: fmt.Sprintf("found at %s but not runnable", path)}
	}
	return CheckResult{Name: "tmux", Status: "ok", Message: strings.TrimSpace(string(out))}
}

func checkInsideTmux() CheckResult {
	if os.Getenv("TMUX") == "" {
		return CheckResult{Name: "session", Status: "error", Message: "not inside a tmux session; start tmux first"}
	}
	return CheckResult{Name: "session", Status: "ok", Message: "inside tmux"}
}

func checkConfig(path string) (*config.Config, CheckResult) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, CheckResult{Name: "config", Status: "error", Message: err.Error()}
	}
	return cfg, CheckResult{Name: "config", Status: "ok", Message: fmt.Sprintf("%s (%d commands)", path, len(cfg.Commands))}
}

func checkShell(shell string) CheckResult {
	if _, err := exec.LookPath(shell); err != nil {
		return CheckResult{Name: "shell", Status: "error", Message: fmt.Sprintf("%s not found in PATH", shell)}
	}
	return CheckResult{Name: "shell", Status: "ok", Message: shell}
}

func checkFolder(cfg *config.Config) CheckResult {
	dir := cfg.WorkDir()
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return CheckResult{Name: "folder", Status: "error", Message: fmt.Sprintf("%s is not a directory", dir)}
	}
	return CheckResult{Name: "folder", Status: "ok", Message: dir}
}

func checkDataDir() CheckResult {
	dir, err := config.DataDir()
	if err != nil {
		return CheckResult{Name: "data dir", Status: "error", Message: err.Error()}
	}
	probe := dir + "/.doctor-probe"
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return CheckResult{Name: "data dir", Status: "error", Message: fmt.Sprintf("%s not writable", dir)}
	}
	os.Remove(probe)
	return CheckResult{Name: "data dir", Status: "ok", Message: dir}
}
