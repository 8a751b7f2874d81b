//go:build windows

// Package process terminates browser process trees left behind by the
// thumbnail renderer.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup force-kills pid and its children with taskkill /T.
// Errors are ignored: the browser launcher runs its own cleanup as a fallback.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
