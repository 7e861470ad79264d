package system

import (
	"runtime"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
)

const (
	// Windows error codes
	ERROR_NOT_READY = 0x15
	ERROR_DISK_FULL = 112

	isWindows = runtime.GOOS == "windows"
)

// IsDiskFull распознаёт нехватку места на носителе
func IsDiskFull(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.Errno(ERROR_DISK_FULL)) && isWindows {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "not enough space") ||
		strings.Contains(msg, "no space")
}

// IsNotReady распознаёт извлечённое или неготовое устройство
func IsNotReady(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ENXIO) || errors.Is(err, syscall.Errno(ERROR_NOT_READY)) && isWindows {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not ready") ||
		strings.Contains(msg, "no such device")
}
