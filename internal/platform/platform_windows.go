//go:build windows

package platform

import (
	"os/exec"
	"syscall"
)

// detachedProcess is the DETACHED_PROCESS creation flag, absent from
// the syscall package.
const detachedProcess = 0x00000008

// New selects the strategy for the current OS.
func New(shell, terminal string) Strategy {
	return &Windows{}
}

// SetGroup places cmd in a new process group so taskkill /t covers it.
func SetGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// SetDetached starts cmd without inheriting the launcher's console.
func SetDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}
