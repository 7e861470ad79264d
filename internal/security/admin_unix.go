//go:build unix

package security

import "os"

// IsAdmin: эффективный uid 0
func IsAdmin() bool {
	return os.Geteuid() == 0
}
