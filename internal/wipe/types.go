package wipe

import (
	"time"

	"go.uber.org/zap"

	"securewipe/internal/progress"
)

// Config неизменяемая конфигурация сессии, проверенная вызывающей стороной
type Config struct {
	Algorithm Algorithm
	// BufferSize в байтах; AutoBufferSize включает эвристику
	BufferSize int
	FastMode   bool
	JSONMode   bool
	// TargetType подсказка типа цели; TargetAuto делегирует DeviceProbe
	TargetType TargetType
	// MaxSpeedMBps ограничение скорости записи, 0 без ограничения
	MaxSpeedMBps float64
}

// Options are the collaborators of a session. Zero values select defaults.
type Options struct {
	Reporter        progress.Reporter
	Logger          *zap.Logger
	Probe           DeviceProbe
	AvailableMemory func() uint64
	Clock           func() time.Time
}

// Target описывает открытую цель; Size не меняется в течение сессии
type Target struct {
	Path string
	Type TargetType
	Size uint64
	Mode OpenMode
}

// IsBlockDevice reports whether the target is a raw block device.
func (t Target) IsBlockDevice() bool {
	return t.Type == TargetBlockDevice
}

// Summary результат успешного затирания
type Summary struct {
	SessionID      string
	Target         Target
	Algorithm      Algorithm
	Passes         int
	BufferSize     int
	BytesWritten   uint64
	StartTime      time.Time
	Elapsed        time.Duration
	ThroughputMBps float64
}
