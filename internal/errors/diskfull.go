package errors

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// DiskFullError is a write or open that ran out of space.
type DiskFullError struct {
	Op   string
	Path string
	err  error
}

func (e *DiskFullError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("disk full during %s on %s: %v", e.Op, e.Path, e.err)
	}
	return fmt.Sprintf("disk full during %s: %v", e.Op, e.err)
}

// Unwrap matches ErrDiskFull.
func (e *DiskFullError) Unwrap() error {
	return ErrDiskFull
}

// Cause returns the error reported by the filesystem or store.
func (e *DiskFullError) Cause() error {
	return e.err
}

// Badger reports a full disk through its own error text.
var diskFullMessages = []string{
	"no space left on device",
	"not enough space",
	"disk full",
}

// IsDiskFull reports whether err means the disk has no space left.
func IsDiskFull(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDiskFull) || errors.Is(err, syscall.ENOSPC) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range diskFullMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// WrapDiskFull returns err as a *DiskFullError when it means the disk is
// full, and err unchanged otherwise.
func WrapDiskFull(err error, op, path string) error {
	if !IsDiskFull(err) {
		return err
	}
	var dfe *DiskFullError
	if errors.As(err, &dfe) {
		return err
	}
	return &DiskFullError{Op: op, Path: path, err: err}
}
