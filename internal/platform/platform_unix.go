//go:build !windows

package platform

import (
	"fmt"
	"os/exec"
	"syscall"
)

// New selects the strategy for the current OS.
func New(shell, terminal string) Strategy {
	return &Posix{Shell: shell, Terminal: terminal}
}

// KillTree signals the negative pid, i.e. the whole process group, so
// a terminal-wrapped shell and the real command under it die together.
func (p *Posix) KillTree(pid int) error {
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		return fmt.Errorf("kill process group %d: %w", pid, err)
	}
	return nil
}

// SetGroup places cmd in its own process group so KillTree reaches
// every descendant.
func SetGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// SetDetached starts cmd in a new session, detached from the
// launcher's controlling terminal. A session leader is also a group
// leader, so KillTree applies unchanged.
func SetDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
