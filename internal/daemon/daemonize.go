package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonEnv marks a process started by Daemonize.
const daemonEnv = "BATNAG_DAEMONIZED"

// IsDaemonized reports whether this process was started by Daemonize.
func IsDaemonized() bool {
	return os.Getenv(daemonEnv) == "1"
}

// Daemonize starts the running executable again with args in a new session,
// detached from the terminal's stdin, and returns the child's PID. The
// child's stdout and stderr go to the null device unless keepOutput is set.
// The caller is expected to exit afterwards.
func Daemonize(args []string, keepOutput bool) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to locate executable: %w", err)
	}
	return spawn(exe, args, keepOutput)
}

func spawn(exe string, args []string, keepOutput bool) (int, error) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := daemonCommand(exe, args, devNull, keepOutput)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release daemon process: %w", err)
	}
	return pid, nil
}

func daemonCommand(exe string, args []string, devNull *os.File, keepOutput bool) *exec.Cmd {
	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), daemonEnv+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	if keepOutput {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}
