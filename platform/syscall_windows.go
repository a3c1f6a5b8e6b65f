//go:build windows

package platform

import (
	"os/exec"
	"syscall"
)

// HideWindow prevents a console window from flashing up for each
// FFmpeg invocation on Windows.
func HideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: 0x08000000,
	}
}
