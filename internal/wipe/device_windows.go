//go:build windows

package wipe

import (
	"os"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

const (
	fsctlLockVolume             = 0x90018
	fsctlDismountVolume         = 0x90020
	fsctlUnlockVolume           = 0x9001c
	ioctlDiskGetLengthInfo      = 0x7405c
	ioctlDiskGetDriveGeometryEx = 0x700a0
)

type diskGeometry struct {
	Cylinders         int64
	MediaType         uint32
	TracksPerCylinder uint32
	SectorsPerTrack   uint32
	BytesPerSector    uint32
}

type diskGeometryEx struct {
	Geometry diskGeometry
	DiskSize int64
	Data     [1]byte
}

// isPhysicalDrivePath \\.\PhysicalDriveN
func isPhysicalDrivePath(p string) bool {
	return strings.HasPrefix(strings.ToLower(p), `\\.\physicaldrive`)
}

// isLogicalDrivePath \\.\C:
func isLogicalDrivePath(p string) bool {
	if len(p) != 6 || !strings.HasPrefix(p, `\\.\`) || p[5] != ':' {
		return false
	}
	c := p[4] | 0x20
	return c >= 'a' && c <= 'z'
}

// classifyPath: на Windows устройство определяется по форме пути
func classifyPath(path string) (TargetType, error) {
	if isPhysicalDrivePath(path) || isLogicalDrivePath(path) {
		return TargetBlockDevice, nil
	}
	if _, err := os.Stat(path); err != nil {
		return TargetAuto, err
	}
	return TargetRegularFile, nil
}

// volumeFile держит блокировку тома до закрытия
type volumeFile struct {
	*os.File
	locked bool
}

func (v *volumeFile) Close() error {
	if v.locked {
		var n uint32
		_ = windows.DeviceIoControl(windows.Handle(v.Fd()), fsctlUnlockVolume, nil, 0, nil, 0, &n, nil)
		v.locked = false
	}
	return v.File.Close()
}

func openTarget(path string, t TargetType, mode OpenMode) (Device, error) {
	if t != TargetBlockDevice {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	var attrs uint32 = windows.FILE_ATTRIBUTE_NORMAL
	if mode.Direct {
		attrs |= windows.FILE_FLAG_NO_BUFFERING
	}
	if mode.Sync {
		attrs |= windows.FILE_FLAG_WRITE_THROUGH
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		attrs,
		0,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "CreateFile %s", path)
	}

	vf := &volumeFile{File: os.NewFile(uintptr(h), path)}
	if isLogicalDrivePath(path) {
		// Том нужно заблокировать и размонтировать, иначе запись будет отклонена
		var n uint32
		if err := windows.DeviceIoControl(h, fsctlLockVolume, nil, 0, nil, 0, &n, nil); err != nil {
			vf.Close()
			return nil, errors.Wrapf(err, "lock volume %s", path)
		}
		vf.locked = true
		if err := windows.DeviceIoControl(h, fsctlDismountVolume, nil, 0, nil, 0, &n, nil); err != nil {
			vf.Close()
			return nil, errors.Wrapf(err, "dismount volume %s", path)
		}
	}
	return vf, nil
}

func blockDeviceSize(d Device) (uint64, error) {
	h := windows.Handle(d.Fd())
	var n uint32

	var length int64
	err := windows.DeviceIoControl(h, ioctlDiskGetLengthInfo, nil, 0,
		(*byte)(unsafe.Pointer(&length)), uint32(unsafe.Sizeof(length)), &n, nil)
	if err == nil && length > 0 {
		return uint64(length), nil
	}

	var geo diskGeometryEx
	if gerr := windows.DeviceIoControl(h, ioctlDiskGetDriveGeometryEx, nil, 0,
		(*byte)(unsafe.Pointer(&geo)), uint32(unsafe.Sizeof(geo)), &n, nil); gerr != nil {
		return 0, errors.Wrap(gerr, "IOCTL_DISK_GET_DRIVE_GEOMETRY_EX")
	}
	if geo.DiskSize <= 0 {
		return 0, errors.Newf("invalid disk size %d", geo.DiskSize)
	}
	return uint64(geo.DiskSize), nil
}
