//go:build linux

package system

import (
	"bufio"
	"bytes"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

func availableMemory() (uint64, error) {
	if n, err := memAvailableFromProc("/proc/meminfo"); err == nil {
		return n, nil
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, errors.Wrap(err, "sysinfo")
	}
	return uint64(info.Freeram) * uint64(info.Unit), nil
}

// memAvailableFromProc читает поле MemAvailable (в kB)
func memAvailableFromProc(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return parseMemAvailable(data)
}

func parseMemAvailable(data []byte) (uint64, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := bytes.Fields(sc.Bytes())
		if len(fields) < 2 || string(fields[0]) != "MemAvailable:" {
			continue
		}
		kb, err := strconv.ParseUint(string(fields[1]), 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse MemAvailable")
		}
		return kb * 1024, nil
	}
	return 0, errors.New("MemAvailable not found")
}
