// Package launcher spawns child processes from translated invocations,
// tees their output to log sinks and the controlling terminal, and
// keeps the process registry consistent on every exit path.
package launcher

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/deixis/foreman/internal/logsink"
	"github.com/deixis/foreman/internal/platform"
	"github.com/deixis/foreman/internal/registry"
)

// startFailureCode is the synthesized exit code when the process never
// started. Results carry a distinct StartFailure flag so a real -1
// exit is not conflated with a spawn failure.
const startFailureCode = -1

// DefaultMaxOutput caps in-memory capture for inline executions.
const DefaultMaxOutput = 1 << 20 // 1 MB

// Launcher wires spawned processes to the log directory, the registry,
// and the console streams.
type Launcher struct {
	Registry *registry.Registry
	Logs     *logsink.Dir
	Platform platform.Strategy

	// Console receives teed child output. Defaults to os.Stdout.
	Console io.Writer
	// MaxOutput caps inline capture buffers. Defaults to DefaultMaxOutput.
	MaxOutput int
}

func (l *Launcher) console() io.Writer {
	if l.Console != nil {
		return l.Console
	}
	return os.Stdout
}

func (l *Launcher) maxOutput() int {
	if l.MaxOutput > 0 {
		return l.MaxOutput
	}
	return DefaultMaxOutput
}

// TerminalOptions configure ExecuteInTerminal.
type TerminalOptions struct {
	Title    string // window caption
	Dir      string // working directory for the spawned terminal
	Wait     bool   // hold the window for a keypress after the command
	KeepOpen bool   // drop into an interactive shell when the command finishes
}

// TerminalResult is the resolved outcome of a terminal execution.
type TerminalResult struct {
	Success      bool   `json:"success"`
	ExitCode     int    `json:"exit_code"`
	PID          int    `json:"pid"`
	LogPath      string `json:"log_path"`
	StartFailure bool   `json:"start_failure,omitempty"`
}

// InlineOptions configure ExecuteInline.
type InlineOptions struct {
	Dir     string            // working directory
	Env     map[string]string // extra environment, merged over the parent's
	Verbose bool              // echo captured output to the console as well
	// AllowFailure suppresses the CommandError normally returned for a
	// non-zero exit; callers then read Success from the result.
	AllowFailure bool
}

// Result is the resolved outcome of an inline execution.
type Result struct {
	Success      bool   `json:"success"`
	Code         int    `json:"code"`
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
	StartFailure bool   `json:"start_failure,omitempty"`
}

// CommandError reports a command that ran and exited non-zero (or
// failed to start). It carries the captured streams so failure
// diagnosis never depends on the caller re-running the command.
type CommandError struct {
	Command string
	Code    int
	Stdout  string
	Stderr  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d", e.Command, e.Code)
}

// ExecuteInTerminal spawns command wrapped in a new terminal window,
// tees its output to a dedicated log file and the console, and blocks
// until the terminal process closes. It never returns an error; start
// failures resolve into the result with StartFailure set. Callers
// wanting several terminals in flight run it from separate goroutines.
func (l *Launcher) ExecuteInTerminal(ctx context.Context, command string, opts TerminalOptions) *TerminalResult {
	inv := l.Platform.TerminalCommand(command, platform.TerminalOptions{
		Title:    opts.Title,
		Wait:     opts.Wait,
		KeepOpen: opts.KeepOpen,
	})

	sink, err := l.Logs.Open()
	if err != nil {
		// Keep running without persistence rather than failing the launch.
		fmt.Fprintf(l.console(), "foreman: log sink unavailable: %v\n", err)
		sink = nil
	}
	sink.Writef(logsink.TagInfo, "Executing: %s", command)

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = opts.Dir
	platform.SetDetached(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return l.terminalStartFailure(sink, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return l.terminalStartFailure(sink, err)
	}

	if err := cmd.Start(); err != nil {
		return l.terminalStartFailure(sink, err)
	}

	pid := cmd.Process.Pid

	// Register before the streaming goroutines start so the record is
	// visible before the first byte of output can be handled.
	rec := &registry.Record{
		PID:         pid,
		CommandLine: command,
		StartTime:   time.Now(),
		LogPath:     sink.Path(),
		Running:     true,
		Process:     cmd.Process,
	}
	untrack := l.track(rec)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.streamLines(stdout, sink, logsink.TagOut, pid)
	}()
	go func() {
		defer wg.Done()
		l.streamLines(stderr, sink, logsink.TagErr, pid)
	}()

	// Drain both pipes before Wait; Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()
	code := exitCode(waitErr)

	// Exit path order: finalize the sink, drop the record, resolve.
	sink.Writef(logsink.TagInfo, "Process exited with code %d", code)
	if err := sink.Close(); err != nil {
		fmt.Fprintf(l.console(), "foreman: %v\n", err)
	}
	untrack()

	return &TerminalResult{
		Success:  code == 0,
		ExitCode: code,
		PID:      pid,
		LogPath:  sink.Path(),
	}
}

// terminalStartFailure synthesizes the close path for a process that
// never started: the sink is finalized with the sentinel exit line and
// the (never-inserted) registry entry is removed, leaving no partial
// state.
func (l *Launcher) terminalStartFailure(sink *logsink.Sink, err error) *TerminalResult {
	sink.Writef(logsink.TagInfo, "Failed to start: %v", err)
	sink.Writef(logsink.TagInfo, "Process exited with code %d", startFailureCode)
	if cerr := sink.Close(); cerr != nil {
		fmt.Fprintf(l.console(), "foreman: %v\n", cerr)
	}
	return &TerminalResult{
		Success:      false,
		ExitCode:     startFailureCode,
		LogPath:      sink.Path(),
		StartFailure: true,
	}
}

// streamLines copies one child stream line by line to the sink and the
// console, prefixing console lines with the child's pid. Lines within
// one stream keep arrival order; no ordering holds between the stdout
// and stderr streams. The reader has no line-length cap: the pipe must
// be drained to EOF on every path, or the child blocks on a full pipe
// and the exit path never runs.
func (l *Launcher) streamLines(r io.Reader, sink *logsink.Sink, tag string, pid int) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			sink.Write(tag, line)
			fmt.Fprintf(l.console(), "[%d] %s\n", pid, line)
		}
		if err != nil {
			return
		}
	}
}

// track registers rec and returns the cleanup that removes it on exit.
// A duplicate pid is an invariant violation: report it and carry on
// untracked rather than killing a process we just started. The cleanup
// is then a no-op so the colliding record, which belongs to another
// launch, stays untouched.
func (l *Launcher) track(rec *registry.Record) func() {
	if err := l.Registry.Insert(rec); err != nil {
		fmt.Fprintf(l.console(), "foreman: %v\n", err)
		return func() {}
	}
	return func() { l.Registry.Remove(rec.PID) }
}

// ExecuteInline runs command through the platform shell, capturing
// stdout and stderr into bounded in-memory buffers. On a non-zero exit
// (or a spawn failure) it returns the result together with a
// *CommandError unless opts.AllowFailure is set.
func (l *Launcher) ExecuteInline(ctx context.Context, command string, opts InlineOptions) (*Result, error) {
	inv := l.Platform.InlineCommand(command)

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = opts.Dir
	platform.SetGroup(cmd)

	if len(opts.Env) > 0 {
		env := os.Environ()
		for k, v := range opts.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	var stdout, stderr bytes.Buffer
	var outW, errW io.Writer = newLimitWriter(&stdout, l.maxOutput()), newLimitWriter(&stderr, l.maxOutput())
	if opts.Verbose {
		outW = io.MultiWriter(outW, l.console())
		errW = io.MultiWriter(errW, l.console())
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		res := &Result{
			Success:      false,
			Code:         startFailureCode,
			Stderr:       err.Error(),
			StartFailure: true,
		}
		return res, l.failure(command, res, opts.AllowFailure)
	}

	pid := cmd.Process.Pid
	rec := &registry.Record{
		PID:         pid,
		CommandLine: command,
		StartTime:   time.Now(),
		Running:     true,
		Process:     cmd.Process,
	}
	untrack := l.track(rec)

	waitErr := cmd.Wait()
	untrack()

	code := exitCode(waitErr)
	res := &Result{
		Success: code == 0,
		Code:    code,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	return res, l.failure(command, res, opts.AllowFailure)
}

// failure converts a failed result into a *CommandError, or nil when
// the command succeeded or the caller opted into non-throwing results.
func (l *Launcher) failure(command string, res *Result, allow bool) error {
	if res.Success || allow {
		return nil
	}
	return &CommandError{
		Command: command,
		Code:    res.Code,
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
	}
}

// exitCode maps a Wait error to the child's exit code. A nil error is
// a zero exit; anything that is not an ExitError gets the sentinel.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return startFailureCode
}

// limitWriter writes up to limit bytes to buf, then silently discards
// the rest while still reporting full consumption to avoid short-write
// errors upstream.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func newLimitWriter(buf *bytes.Buffer, limit int) *limitWriter {
	return &limitWriter{buf: buf, limit: limit}
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
