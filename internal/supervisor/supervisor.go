// Package supervisor is the public surface of the execution subsystem:
// terminal and inline execution, sequential batches, privilege
// elevation, availability probes, and registry queries including tree
// kill. It composes the translator, launcher, and registry; it holds
// no execution logic of its own.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/deixis/foreman/internal/config"
	"github.com/deixis/foreman/internal/launcher"
	"github.com/deixis/foreman/internal/logsink"
	"github.com/deixis/foreman/internal/platform"
	"github.com/deixis/foreman/internal/registry"
)

// Supervisor owns the process registry and the launcher wired to it.
// One instance serves the whole program; all methods are safe for
// concurrent use.
type Supervisor struct {
	reg      *registry.Registry
	launcher *launcher.Launcher
	platform platform.Strategy
}

// New builds a Supervisor from configuration. console receives teed
// child output; pass nil for os.Stdout.
func New(cfg *config.Config, console io.Writer) *Supervisor {
	strat := platform.New(cfg.ShellName(), cfg.Terminal)
	reg := registry.New()
	return &Supervisor{
		reg:      reg,
		platform: strat,
		launcher: &launcher.Launcher{
			Registry:  reg,
			Logs:      logsink.NewDir(),
			Platform:  strat,
			Console:   console,
			MaxOutput: cfg.MaxOutputBytes(),
		},
	}
}

// ExecuteInTerminal runs command in a freshly spawned terminal window
// and blocks until that window's process closes.
func (s *Supervisor) ExecuteInTerminal(ctx context.Context, command string, opts launcher.TerminalOptions) *launcher.TerminalResult {
	return s.launcher.ExecuteInTerminal(ctx, command, opts)
}

// ExecuteCommand runs command inline through the platform shell with
// output captured in memory.
func (s *Supervisor) ExecuteCommand(ctx context.Context, command string, opts launcher.InlineOptions) (*launcher.Result, error) {
	return s.launcher.ExecuteInline(ctx, command, opts)
}

// Sudo rewrites command into the platform's privilege-elevation form
// and runs it inline.
func (s *Supervisor) Sudo(ctx context.Context, command string, opts launcher.InlineOptions) (*launcher.Result, error) {
	return s.launcher.ExecuteInline(ctx, s.platform.SudoCommand(command), opts)
}

// BatchCommand is one entry of a RunCommands sequence.
type BatchCommand struct {
	Command string `json:"command"`
	Dir     string `json:"cwd,omitempty"`
}

// BatchOptions configure RunCommands.
type BatchOptions struct {
	// StopOnError aborts the sequence at the first failing command;
	// the failure is also returned as the error.
	StopOnError bool
	Verbose     bool
}

// BatchResult is the per-command outcome of a RunCommands sequence.
type BatchResult struct {
	Command string `json:"command"`
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Stdout  string `json:"stdout,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

// RunCommands executes the sequence one command at a time, in order.
// With StopOnError the result slice ends at the failed command and the
// error carries its exit code and streams; otherwise every command
// runs and failures are recorded in their entries.
func (s *Supervisor) RunCommands(ctx context.Context, cmds []BatchCommand, opts BatchOptions) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(cmds))
	for _, c := range cmds {
		res, err := s.launcher.ExecuteInline(ctx, c.Command, launcher.InlineOptions{
			Dir:          c.Dir,
			Verbose:      opts.Verbose,
			AllowFailure: !opts.StopOnError,
		})
		results = append(results, BatchResult{
			Command: c.Command,
			Success: res.Success,
			Code:    res.Code,
			Stdout:  res.Stdout,
			Stderr:  res.Stderr,
		})
		if err != nil {
			return results, fmt.Errorf("running %q: %w", c.Command, err)
		}
	}
	return results, nil
}

// IsCommandAvailable reports whether name resolves to a runnable
// binary on this platform. It never returns an error; any probe
// failure reads as unavailable.
func (s *Supervisor) IsCommandAvailable(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	inv := s.platform.ProbeCommand(name)
	return exec.CommandContext(ctx, inv.Path, inv.Args...).Run() == nil
}

// ListProcesses returns every tracked process in launch order.
func (s *Supervisor) ListProcesses() []registry.Snapshot {
	return s.reg.List()
}

// ProcessInfo is a registry snapshot enriched with live resource usage
// sampled at query time.
type ProcessInfo struct {
	registry.Snapshot
	CPUPercent float64 `json:"cpu_percent,omitempty"`
	MemoryRSS  uint64  `json:"memory_rss,omitempty"`
}

// GetProcessInfo returns the tracked record for pid, enriched with CPU
// and resident-memory usage when the OS can still provide them. An
// unknown pid reports absence, not an error.
func (s *Supervisor) GetProcessInfo(pid int) (ProcessInfo, bool) {
	snap, ok := s.reg.Get(pid)
	if !ok {
		return ProcessInfo{}, false
	}
	info := ProcessInfo{Snapshot: snap}
	if p, err := process.NewProcess(int32(pid)); err == nil {
		if cpu, err := p.CPUPercent(); err == nil {
			info.CPUPercent = cpu
		}
		if mem, err := p.MemoryInfo(); err == nil && mem != nil {
			info.MemoryRSS = mem.RSS
		}
	}
	return info, true
}

// KillProcess terminates the whole process tree rooted at pid. It
// reports false for unknown pids and signalling failures. The registry
// entry is not removed here; it disappears asynchronously when the
// owning launcher observes the process exit.
func (s *Supervisor) KillProcess(pid int) bool {
	if _, ok := s.reg.Get(pid); !ok {
		return false
	}
	if err := s.platform.KillTree(pid); err != nil {
		log.Printf("killing process %d: %v", pid, err)
		return false
	}
	return true
}

// Shutdown kills every still-tracked process tree. Invoked by the
// owning program's top-level lifecycle so spawned terminals and
// children do not outlive the supervisor.
func (s *Supervisor) Shutdown() {
	for _, snap := range s.reg.List() {
		if !snap.Running {
			continue
		}
		if err := s.platform.KillTree(snap.PID); err != nil {
			log.Printf("shutdown: killing process %d: %v", snap.PID, err)
		}
	}
}
