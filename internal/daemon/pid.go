// Package daemon runs dailyclocks headless: it keeps tick tasks and the
// rollover scheduler alive in the foreground until a shutdown signal arrives.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const (
	// AppName is the application name used for state directories.
	AppName = "dailyclocks"
	// PIDFileName is the PID file name.
	PIDFileName = "dailyclocks.pid"
	// StateFileName is the runner status file name.
	StateFileName = "runner.json"
)

// PIDFile manages the runner PID file.
type PIDFile struct {
	fs   afero.Fs
	path string
}

// NewPIDFile creates a PID file manager for path on fs.
func NewPIDFile(fs afero.Fs, path string) *PIDFile {
	if path == "" {
		path = GetPIDFilePath()
	}
	return &PIDFile{fs: fs, path: path}
}

// GetPIDFilePath returns the default PID file location.
func GetPIDFilePath() string {
	// State home survives reboots and exists on macOS, unlike the runtime dir.
	return filepath.Join(xdg.StateHome, AppName, PIDFileName)
}

// GetStateFilePath returns the default runner status file location.
func GetStateFilePath() string {
	return filepath.Join(xdg.StateHome, AppName, StateFileName)
}

// Write writes the current process PID to the file.
func (p *PIDFile) Write() error {
	return p.WritePID(os.Getpid())
}

// WritePID writes a specific PID to the file.
func (p *PIDFile) WritePID(pid int) error {
	if err := p.fs.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	if err := afero.WriteFile(p.fs, p.path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read reads the PID from the file.
func (p *PIDFile) Read() (int, error) {
	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// Remove removes the PID file.
func (p *PIDFile) Remove() error {
	if err := p.fs.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Exists checks if the PID file exists.
func (p *PIDFile) Exists() bool {
	ok, err := afero.Exists(p.fs, p.path)
	return err == nil && ok
}

// RunningPID returns the recorded PID if that process is alive, or 0.
// A PID file left behind by a crashed runner reports 0.
func (p *PIDFile) RunningPID() int {
	pid, err := p.Read()
	if err != nil || !IsProcessRunning(pid) {
		return 0
	}
	return pid
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// IsProcessRunning checks if a process with the given PID is running.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// FindProcess always succeeds on Unix; signal 0 probes for existence.
	return process.Signal(syscall.Signal(0)) == nil
}

// ErrNotRunning is returned when no runner is active.
var ErrNotRunning = errors.New("runner is not running")
