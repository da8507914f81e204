package platform

import (
	"fmt"
	"os/exec"
	"strconv"
)

// Windows translates commands for the Windows family. Terminal windows
// are opened through the cmd.exe start builtin; inline execution goes
// through cmd /c.
type Windows struct{}

// TerminalCommand opens a new titled console window. KeepOpen selects
// /k (shell stays interactive) over /c; Wait appends a pause step so
// the window holds for a keypress before it would close.
func (w *Windows) TerminalCommand(command string, opts TerminalOptions) Invocation {
	inner := command
	if opts.Wait {
		inner += " & pause"
	}
	hostFlag := "/c"
	if opts.KeepOpen {
		hostFlag = "/k"
	}
	title := opts.Title
	if title == "" {
		title = "foreman"
	}
	// start treats its first quoted argument as the window title.
	return Invocation{
		Path: "cmd.exe",
		Args: []string{"/c", "start", title, "cmd", hostFlag, inner},
	}
}

// InlineCommand passes the raw command string to cmd /c.
func (w *Windows) InlineCommand(command string) Invocation {
	return Invocation{Path: "cmd.exe", Args: []string{"/c", command}}
}

// SudoCommand rewrites the command into a runas elevation.
func (w *Windows) SudoCommand(command string) string {
	return fmt.Sprintf(`runas /user:Administrator "cmd /c %s"`, command)
}

// ProbeCommand checks availability via where.
func (w *Windows) ProbeCommand(name string) Invocation {
	return Invocation{Path: "where", Args: []string{name}}
}

// KillTree invokes taskkill to terminate pid and every descendant.
func (w *Windows) KillTree(pid int) error {
	if err := exec.Command("taskkill", "/pid", strconv.Itoa(pid), "/t", "/f").Run(); err != nil {
		return fmt.Errorf("taskkill pid %d: %w", pid, err)
	}
	return nil
}
