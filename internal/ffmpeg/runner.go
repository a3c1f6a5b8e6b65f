// Package ffmpeg locates and launches the external FFmpeg tools.
// All transcoding work is delegated to these subprocesses; nothing in
// this program touches audio samples directly.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"

	"opus2mp3/platform"
)

// Tool describes the availability of one external binary.
type Tool struct {
	Name      string
	Path      string
	Available bool
	Detail    string
}

// Find resolves the ffmpeg binary on PATH.
func Find() Tool {
	return lookup("ffmpeg")
}

// FindProbe resolves the ffprobe binary on PATH.
func FindProbe() Tool {
	return lookup("ffprobe")
}

func lookup(name string) Tool {
	tool := Tool{Name: name}
	path, err := exec.LookPath(name)
	if err != nil {
		tool.Detail = fmt.Sprintf("binary %q not found", name)
		return tool
	}
	tool.Path = path
	tool.Available = true
	return tool
}

// Command creates an exec.Cmd for the given binary with platform-specific
// settings applied (hiding the console window on Windows).
func Command(binary string, args ...string) *exec.Cmd {
	cmd := exec.Command(binary, args...)
	platform.HideWindow(cmd)
	return cmd
}

// CommandContext is Command with cancellation; cancelling the context
// kills the subprocess.
func CommandContext(ctx context.Context, binary string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, binary, args...)
	platform.HideWindow(cmd)
	return cmd
}
