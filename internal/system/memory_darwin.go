//go:build darwin

package system

import (
	"golang.org/x/sys/unix"
)

// На macOS нет дешёвого аналога MemAvailable, берём физический объём
func availableMemory() (uint64, error) {
	return unix.SysctlUint64("hw.memsize")
}
