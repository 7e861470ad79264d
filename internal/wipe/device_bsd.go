//go:build unix && !linux && !darwin

package wipe

import "os"

func directOpenFlag(OpenMode) int { return 0 }

func afterOpen(*os.File, OpenMode) error { return nil }

func blockDeviceSize(Device) (uint64, error) {
	return 0, ErrBlockSizeUnsupported
}
