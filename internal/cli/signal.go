package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/haskel/studycost/internal/config"
)

var pidFile string

// resolvePIDFile returns the --pid-file flag or the configured path.
func resolvePIDFile() (string, error) {
	pidPath := pidFile
	if pidPath == "" {
		cfg := config.LoadOrDefault(cfgFile)
		pidPath = cfg.Server.PIDFile
	}

	if pidPath == "" {
		return "", fmt.Errorf("no PID file specified (use --pid-file or configure in config)")
	}
	return pidPath, nil
}

// readPID reads a process ID written by the start command.
func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("PID file not found: %s (server may not be running)", path)
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in file: %s", pidStr)
	}
	return pid, nil
}

// signalServer sends sig to the process named in the PID file.
func signalServer(sig syscall.Signal) (int, error) {
	pidPath, err := resolvePIDFile()
	if err != nil {
		return 0, err
	}

	pid, err := readPID(pidPath)
	if err != nil {
		return 0, err
	}

	// Find the process
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("process not found: %d", pid)
	}

	if err := process.Signal(sig); err != nil {
		return 0, fmt.Errorf("failed to send signal: %w", err)
	}
	return pid, nil
}
