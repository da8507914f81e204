package platform

import "os"

// DefaultEmulator is the generic terminal emulator used when no
// override is configured. On Debian-family systems it is an
// alternatives symlink to whatever the user installed.
const DefaultEmulator = "x-terminal-emulator"

// Posix translates commands for POSIX-family systems. The zero value
// is usable; Shell defaults to sh and the emulator to DefaultEmulator.
type Posix struct {
	Shell    string // inline interpreter, e.g. "sh" or "bash"
	Terminal string // configured emulator; env overrides win
}

func (p *Posix) shell() string {
	if p.Shell != "" {
		return p.Shell
	}
	return "sh"
}

// Emulator resolves the terminal emulator to spawn. Resolution order:
// FOREMAN_TERMINAL, TERMINAL, the configured value, DefaultEmulator.
// Resolution never fails here; if the returned binary does not exist
// the launcher surfaces the start failure.
func (p *Posix) Emulator() string {
	if v := os.Getenv("FOREMAN_TERMINAL"); v != "" {
		return v
	}
	if v := os.Getenv("TERMINAL"); v != "" {
		return v
	}
	if p.Terminal != "" {
		return p.Terminal
	}
	return DefaultEmulator
}

// TerminalCommand wraps command in a login-shell invocation inside a
// new emulator window. The spawned terminal is detached from the
// launcher's session (see SetDetached) so it survives independently.
func (p *Posix) TerminalCommand(command string, opts TerminalOptions) Invocation {
	sh := p.shell()
	script := command
	if opts.Wait {
		script += "; printf '\\nPress enter to close...'; read -r _"
	}
	if opts.KeepOpen {
		// Fall through to an interactive shell instead of closing.
		script += "; exec " + sh
	}
	title := opts.Title
	if title == "" {
		title = "foreman"
	}
	return Invocation{
		Path: p.Emulator(),
		Args: []string{"-T", title, "-e", sh, "-lc", script},
	}
}

// InlineCommand passes the raw command string as a single -c argument.
func (p *Posix) InlineCommand(command string) Invocation {
	return Invocation{Path: p.shell(), Args: []string{"-c", command}}
}

// SudoCommand prefixes the command with sudo.
func (p *Posix) SudoCommand(command string) string {
	return "sudo " + command
}

// ProbeCommand checks availability via the shell builtin.
func (p *Posix) ProbeCommand(name string) Invocation {
	return Invocation{Path: p.shell(), Args: []string{"-c", "command -v -- " + name}}
}
