package wipe

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// throttledWriter ограничивает скорость записи в цель
type throttledWriter struct {
	dev     Device
	limiter *rate.Limiter
}

// newThrottledWriter: maxSpeedMBps <= 0 отключает ограничение.
// burst должен быть не меньше размера одной записи.
func newThrottledWriter(dev Device, maxSpeedMBps float64, burst int) *throttledWriter {
	tw := &throttledWriter{dev: dev}
	if maxSpeedMBps > 0 {
		tw.limiter = rate.NewLimiter(rate.Limit(maxSpeedMBps*1024*1024), burst)
	}
	return tw
}

// WriteFull записывает весь буфер, повторяя короткие записи
func (tw *throttledWriter) WriteFull(ctx context.Context, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if tw.limiter != nil {
		if err := tw.limiter.WaitN(ctx, len(data)); err != nil {
			return 0, err
		}
	}

	off := 0
	for off < len(data) {
		n, err := tw.dev.Write(data[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			return off, err
		}
		if n == 0 {
			return off, io.ErrShortWrite
		}
	}
	return off, nil
}

// Rewind переходит в начало цели перед проходом
func (tw *throttledWriter) Rewind() error {
	_, err := tw.dev.Seek(0, io.SeekStart)
	return err
}

// Sync синхронизирует данные на носитель
func (tw *throttledWriter) Sync() error {
	return tw.dev.Sync()
}
