//go:build darwin

package wipe

import (
	"os"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const (
	dkiocGetBlockSize  = 0x40046418 // _IOR('d', 24, uint32)
	dkiocGetBlockCount = 0x40086419 // _IOR('d', 25, uint64)
)

// В macOS нет O_DIRECT, page cache отключается через F_NOCACHE после открытия
func directOpenFlag(OpenMode) int { return 0 }

func afterOpen(f *os.File, mode OpenMode) error {
	if !mode.Direct {
		return nil
	}
	if _, err := unix.FcntlInt(f.Fd(), unix.F_NOCACHE, 1); err != nil {
		return errors.Wrap(err, "fcntl F_NOCACHE")
	}
	return nil
}

func blockDeviceSize(d Device) (uint64, error) {
	var blockSize uint32
	var blockCount uint64

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.Fd(), dkiocGetBlockSize, uintptr(unsafe.Pointer(&blockSize))); errno != 0 {
		return 0, errors.Wrap(errno, "ioctl DKIOCGETBLOCKSIZE")
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.Fd(), dkiocGetBlockCount, uintptr(unsafe.Pointer(&blockCount))); errno != 0 {
		return 0, errors.Wrap(errno, "ioctl DKIOCGETBLOCKCOUNT")
	}
	return uint64(blockSize) * blockCount, nil
}
