package platform

import (
	"strings"
	"testing"
)

func clearTerminalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FOREMAN_TERMINAL", "")
	t.Setenv("TERMINAL", "")
}

func TestPosixInlineCommand(t *testing.T) {
	p := &Posix{}
	inv := p.InlineCommand("echo hello && echo bye")
	if inv.Path != "sh" {
		t.Errorf("Path = %q, want sh", inv.Path)
	}
	// The raw command string is a single argument; no nested wrapping.
	want := []string{"-c", "echo hello && echo bye"}
	if len(inv.Args) != 2 || inv.Args[0] != want[0] || inv.Args[1] != want[1] {
		t.Errorf("Args = %q, want %q", inv.Args, want)
	}
}

func TestPosixInlineCommand_ConfiguredShell(t *testing.T) {
	p := &Posix{Shell: "bash"}
	if inv := p.InlineCommand("true"); inv.Path != "bash" {
		t.Errorf("Path = %q, want bash", inv.Path)
	}
}

func TestPosixEmulator_Resolution(t *testing.T) {
	clearTerminalEnv(t)

	p := &Posix{}
	if got := p.Emulator(); got != DefaultEmulator {
		t.Errorf("Emulator = %q, want %q", got, DefaultEmulator)
	}

	p.Terminal = "alacritty"
	if got := p.Emulator(); got != "alacritty" {
		t.Errorf("Emulator = %q, want configured alacritty", got)
	}

	t.Setenv("TERMINAL", "xterm")
	if got := p.Emulator(); got != "xterm" {
		t.Errorf("Emulator = %q, want TERMINAL override xterm", got)
	}

	t.Setenv("FOREMAN_TERMINAL", "kitty")
	if got := p.Emulator(); got != "kitty" {
		t.Errorf("Emulator = %q, want FOREMAN_TERMINAL override kitty", got)
	}
}

func TestPosixTerminalCommand(t *testing.T) {
	clearTerminalEnv(t)

	p := &Posix{}
	inv := p.TerminalCommand("make build", TerminalOptions{Title: "build"})
	if inv.Path != DefaultEmulator {
		t.Errorf("Path = %q, want %q", inv.Path, DefaultEmulator)
	}
	want := []string{"-T", "build", "-e", "sh", "-lc", "make build"}
	if strings.Join(inv.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Args = %q, want %q", inv.Args, want)
	}
}

func TestPosixTerminalCommand_DefaultTitle(t *testing.T) {
	clearTerminalEnv(t)

	inv := (&Posix{}).TerminalCommand("true", TerminalOptions{})
	if inv.Args[1] != "foreman" {
		t.Errorf("title = %q, want foreman", inv.Args[1])
	}
}

func TestPosixTerminalCommand_KeepOpen(t *testing.T) {
	clearTerminalEnv(t)

	inv := (&Posix{}).TerminalCommand("make build", TerminalOptions{KeepOpen: true})
	script := inv.Args[len(inv.Args)-1]
	if !strings.HasSuffix(script, "; exec sh") {
		t.Errorf("script = %q, want interactive-shell continuation", script)
	}
	if !strings.HasPrefix(script, "make build") {
		t.Errorf("script = %q, want to start with the command", script)
	}
}

func TestPosixTerminalCommand_Wait(t *testing.T) {
	clearTerminalEnv(t)

	inv := (&Posix{}).TerminalCommand("make build", TerminalOptions{Wait: true})
	script := inv.Args[len(inv.Args)-1]
	if !strings.Contains(script, "read -r") {
		t.Errorf("script = %q, want pause-for-keypress step", script)
	}
}

func TestPosixSudoCommand(t *testing.T) {
	if got := (&Posix{}).SudoCommand("apt install jq"); got != "sudo apt install jq" {
		t.Errorf("SudoCommand = %q", got)
	}
}

func TestPosixProbeCommand(t *testing.T) {
	inv := (&Posix{}).ProbeCommand("git")
	if inv.Path != "sh" || len(inv.Args) != 2 || !strings.Contains(inv.Args[1], "command -v") {
		t.Errorf("ProbeCommand = %+v, want sh -c command -v", inv)
	}
}
