//go:build !linux && !darwin && !windows

package system

import "github.com/cockroachdb/errors"

func availableMemory() (uint64, error) {
	return 0, errors.New("available memory lookup not supported on this platform")
}
