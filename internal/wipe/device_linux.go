//go:build linux

package wipe

import (
	"os"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

func directOpenFlag(mode OpenMode) int {
	if mode.Direct {
		return unix.O_DIRECT
	}
	return 0
}

func afterOpen(*os.File, OpenMode) error { return nil }

// blockDeviceSize BLKGETSIZE64, требует прав на устройство
func blockDeviceSize(d Device) (uint64, error) {
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, errors.Wrap(errno, "ioctl BLKGETSIZE64")
	}
	return size, nil
}
