package wipe

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// TargetType тип цели затирания
type TargetType int

const (
	// TargetAuto делегирует определение типа DeviceProbe
	TargetAuto TargetType = iota
	TargetRegularFile
	TargetBlockDevice
)

func (t TargetType) String() string {
	switch t {
	case TargetRegularFile:
		return "file"
	case TargetBlockDevice:
		return "block_device"
	default:
		return "auto"
	}
}

// OpenMode флаги открытия цели
type OpenMode struct {
	// Sync: каждая запись доходит до носителя (O_SYNC / FILE_FLAG_WRITE_THROUGH)
	Sync bool
	// Direct: запись в обход page cache (O_DIRECT / F_NOCACHE / FILE_FLAG_NO_BUFFERING)
	Direct bool
}

// OpenModeFor derives the open flags from the target type and fast mode.
func OpenModeFor(t TargetType, fast bool) OpenMode {
	block := t == TargetBlockDevice
	return OpenMode{Sync: block && !fast, Direct: block}
}

// Device is an open wipe target. *os.File satisfies it.
type Device interface {
	io.Writer
	io.Seeker
	Sync() error
	Close() error
	Stat() (os.FileInfo, error)
	Fd() uintptr
}

// DeviceProbe classifies, opens and measures wipe targets.
type DeviceProbe interface {
	Classify(path string) (TargetType, error)
	Open(path string, t TargetType, mode OpenMode) (Device, error)
	Size(d Device, t TargetType) (uint64, error)
}

// ErrBlockSizeUnsupported означает, что платформа не умеет узнавать размер устройства
var ErrBlockSizeUnsupported = errors.New("block device size query is not supported on this platform")

// NativeProbe uses the platform implementation selected at build time.
type NativeProbe struct{}

var _ DeviceProbe = NativeProbe{}

func (NativeProbe) Classify(path string) (TargetType, error) {
	return classifyPath(path)
}

func (NativeProbe) Open(path string, t TargetType, mode OpenMode) (Device, error) {
	return openTarget(path, t, mode)
}

func (NativeProbe) Size(d Device, t TargetType) (uint64, error) {
	if t == TargetBlockDevice {
		return blockDeviceSize(d)
	}
	return regularFileSize(d)
}

func regularFileSize(d Device) (uint64, error) {
	fi, err := d.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat target")
	}
	if fi.Size() < 0 {
		return 0, errors.Newf("negative size %d reported for %s", fi.Size(), fi.Name())
	}
	return uint64(fi.Size()), nil
}
