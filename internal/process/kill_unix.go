//go:build !windows

// Package process terminates browser process trees left behind by the
// thumbnail renderer.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid.
// Errors are ignored: the browser launcher runs its own cleanup as a fallback.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
