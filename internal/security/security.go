package security

import (
	"os"

	"github.com/cockroachdb/errors"

	"securewipe/internal/wipe"
)

// ErrNotPrivileged запись на блочное устройство без прав администратора
var ErrNotPrivileged = errors.New("administrator privileges are required to wipe a block device")

// CheckTarget выполняет проверки перед открытием цели.
// Обычный файл должен быть доступен на запись, блочное устройство требует прав администратора.
func CheckTarget(path string, t wipe.TargetType) error {
	switch t {
	case wipe.TargetBlockDevice:
		if !IsAdmin() {
			return errors.Wrapf(ErrNotPrivileged, "target %s", path)
		}
	case wipe.TargetRegularFile:
		fi, err := os.Stat(path)
		if err != nil {
			return errors.Wrapf(err, "stat %s", path)
		}
		if fi.IsDir() {
			return errors.Newf("target %s is a directory", path)
		}
		if fi.Mode().Perm()&0o222 == 0 {
			return errors.Newf("target %s is read-only", path)
		}
	}
	return nil
}
