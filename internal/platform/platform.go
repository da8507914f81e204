// Package platform translates logical command strings into concrete
// platform-specific invocations and implements process-tree termination.
// Translation is pure string work and compiles everywhere; the
// signal/attribute plumbing lives in build-tagged files.
package platform

// Invocation is a concrete executable plus argument vector ready for
// os/exec. The command string is always passed as a single argument to
// the selected interpreter, never re-wrapped, to avoid double-quoting
// hazards.
type Invocation struct {
	Path string
	Args []string
}

// TerminalOptions configure a terminal-window invocation.
type TerminalOptions struct {
	Title    string // window caption
	Wait     bool   // pause for a keypress before the window would close
	KeepOpen bool   // leave an interactive shell after the command finishes
}

// Strategy is the per-platform translation and termination surface.
// One variant is selected at startup via New and threaded through the
// launcher and supervisor; no call site re-branches on the OS.
type Strategy interface {
	// TerminalCommand wraps command so it runs inside a newly opened
	// terminal window.
	TerminalCommand(command string, opts TerminalOptions) Invocation

	// InlineCommand runs command through the platform's default
	// interpreter with output attached to the caller.
	InlineCommand(command string) Invocation

	// SudoCommand rewrites command into a privilege-elevation form.
	SudoCommand(command string) string

	// ProbeCommand builds the availability check for a binary name
	// (command -v / where). A zero exit code means available.
	ProbeCommand(name string) Invocation

	// KillTree forcefully terminates the process identified by pid
	// together with all of its descendants.
	KillTree(pid int) error
}
