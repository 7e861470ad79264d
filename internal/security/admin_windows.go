//go:build windows

package security

import "golang.org/x/sys/windows"

// IsAdmin проверяет, запущен ли процесс с повышенными правами
func IsAdmin() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
