//go:build !unix && !windows

package wipe

import "os"

func classifyPath(path string) (TargetType, error) {
	if _, err := os.Stat(path); err != nil {
		return TargetAuto, err
	}
	return TargetRegularFile, nil
}

func openTarget(path string, _ TargetType, _ OpenMode) (Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func blockDeviceSize(Device) (uint64, error) {
	return 0, ErrBlockSizeUnsupported
}
