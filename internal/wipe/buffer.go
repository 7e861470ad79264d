package wipe

import (
	"github.com/ncw/directio"
)

const (
	// AutoBufferSize выбирает размер буфера эвристикой
	AutoBufferSize = 0

	// DefaultAvailableMemory используется, когда объём памяти узнать не удалось
	DefaultAvailableMemory uint64 = 8 << 30

	blockBufferMin = 2 << 20
	blockBufferMax = 16 << 20
	fileBufferMin  = 1 << 20
	fileBufferMax  = 8 << 20
)

// ComputeBufferSize returns the I/O buffer size in bytes. A positive requested
// size is honored verbatim. availableMemory of 0 means unknown.
func ComputeBufferSize(isBlockDevice bool, requested int, availableMemory uint64) int {
	if requested > AutoBufferSize {
		return requested
	}
	if availableMemory == 0 {
		availableMemory = DefaultAvailableMemory
	}

	if isBlockDevice {
		// Крупнее для устройств: последовательная запись быстрее.
		// Устройство открыто в обход кэша, длина записи должна быть кратна сектору.
		n := clampBuffer(availableMemory/50, blockBufferMin, blockBufferMax)
		return n - n%sectorSize
	}
	return clampBuffer(availableMemory/100, fileBufferMin, fileBufferMax)
}

func clampBuffer(v uint64, lo, hi int) int {
	if v > uint64(hi) {
		return hi
	}
	if v < uint64(lo) {
		return lo
	}
	return int(v)
}

// allocBuffer выделяет единственный буфер сессии, выровненный для O_DIRECT
func allocBuffer(size int) []byte {
	return directio.AlignedBlock(size)
}
