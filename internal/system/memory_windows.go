//go:build windows

package system

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

type memoryStatusEx struct {
	Length               uint32
	MemoryLoad           uint32
	TotalPhys            uint64
	AvailPhys            uint64
	TotalPageFile        uint64
	AvailPageFile        uint64
	TotalVirtual         uint64
	AvailVirtual         uint64
	AvailExtendedVirtual uint64
}

func availableMemory() (uint64, error) {
	k32 := windows.NewLazySystemDLL("kernel32.dll")
	proc := k32.NewProc("GlobalMemoryStatusEx")

	var st memoryStatusEx
	st.Length = uint32(unsafe.Sizeof(st))
	r1, _, callErr := proc.Call(uintptr(unsafe.Pointer(&st)))
	if r1 == 0 {
		return 0, errors.Wrap(callErr, "GlobalMemoryStatusEx")
	}
	return st.AvailPhys, nil
}
