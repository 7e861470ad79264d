//go:build unix

package wipe

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// classifyPath: специальный блочный файл или обычный
func classifyPath(path string) (TargetType, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return TargetAuto, err
	}
	m := fi.Mode()
	if m&os.ModeDevice != 0 && m&os.ModeCharDevice == 0 {
		return TargetBlockDevice, nil
	}
	return TargetRegularFile, nil
}

func openTarget(path string, t TargetType, mode OpenMode) (Device, error) {
	flags := os.O_RDWR
	if mode.Sync {
		flags |= unix.O_SYNC
	}
	flags |= directOpenFlag(mode)

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}
	if err := afterOpen(f, mode); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "configure %s", path)
	}
	return f, nil
}
