package wipe

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"securewipe/internal/progress"
	"securewipe/internal/system"
)

const (
	mib = 1024 * 1024

	// sectorSize кратность буфера при записи в обход кэша
	sectorSize = 512
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateRunning
	stateCompleted
	stateFailed
)

// Session управляет затиранием одной цели: открытие, проходы, синхронизация.
// Сессия одноразовая: Run можно вызвать один раз.
type Session struct {
	id          string
	cfg         Config
	target      Target
	totalPasses int

	dev    Device
	writer *throttledWriter
	buf    []byte
	rng    *randomSource

	reporter progress.Reporter
	log      *zap.Logger
	now      func() time.Time

	state  sessionState
	closed bool
}

// New validates cfg, opens and measures the target and allocates the
// session buffer. Errors are *Error of kind KindConfig, KindOpen or KindProbe;
// a KindConfig failure touches nothing on disk.
func New(path string, cfg Config, opts Options) (*Session, error) {
	if path == "" {
		return nil, newError(KindConfig, "validate", "", errors.New("target path is empty"))
	}
	totalPasses, err := cfg.Algorithm.PassCount()
	if err != nil {
		return nil, err
	}
	if cfg.BufferSize < 0 {
		return nil, newError(KindConfig, "validate", path, errors.Newf("buffer size must not be negative, got %d", cfg.BufferSize))
	}
	if cfg.MaxSpeedMBps < 0 {
		return nil, newError(KindConfig, "validate", path, errors.Newf("max speed must not be negative, got %f", cfg.MaxSpeedMBps))
	}

	opts = withDefaults(opts)
	s := &Session{
		id:          uuid.NewString(),
		cfg:         cfg,
		totalPasses: totalPasses,
		reporter:    opts.Reporter,
		now:         opts.Clock,
	}
	s.log = opts.Logger.With(zap.String("session_id", s.id), zap.String("target", path))

	targetType := cfg.TargetType
	if targetType == TargetAuto {
		targetType, err = opts.Probe.Classify(path)
		if err != nil {
			return nil, newError(KindOpen, "stat", path, err)
		}
	}
	mode := OpenModeFor(targetType, cfg.FastMode)

	if mode.Direct && cfg.BufferSize != AutoBufferSize && cfg.BufferSize%sectorSize != 0 {
		return nil, newError(KindConfig, "validate", path,
			errors.Newf("buffer size %d must be a multiple of %d bytes for uncached device I/O", cfg.BufferSize, sectorSize))
	}

	rng, err := newRandomSource()
	if err != nil {
		return nil, newError(KindConfig, "init", path, err)
	}
	s.rng = rng

	dev, err := opts.Probe.Open(path, targetType, mode)
	if err != nil {
		return nil, newError(KindOpen, "open", path, err)
	}

	size, err := opts.Probe.Size(dev, targetType)
	if err != nil {
		dev.Close()
		return nil, newError(KindProbe, "size", path, err)
	}

	bufSize := ComputeBufferSize(targetType == TargetBlockDevice, cfg.BufferSize, opts.AvailableMemory())

	s.dev = dev
	s.target = Target{Path: path, Type: targetType, Size: size, Mode: mode}
	s.buf = allocBuffer(bufSize)
	s.writer = newThrottledWriter(dev, cfg.MaxSpeedMBps, bufSize)

	s.log.Info("Сессия открыта",
		zap.String("type", targetType.String()),
		zap.Uint64("size_bytes", size),
		zap.Int("buffer_bytes", bufSize),
		zap.Bool("sync", mode.Sync),
		zap.Bool("direct", mode.Direct),
		zap.String("algorithm", cfg.Algorithm.ID()),
		zap.Int("passes", totalPasses))

	return s, nil
}

func withDefaults(opts Options) Options {
	if opts.Reporter == nil {
		opts.Reporter = progress.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Probe == nil {
		opts.Probe = NativeProbe{}
	}
	if opts.AvailableMemory == nil {
		opts.AvailableMemory = system.AvailableMemory
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return opts
}

func (s *Session) ID() string { return s.id }
func (s *Session) Target() Target { return s.target }
func (s *Session) Config() Config { return s.cfg }
func (s *Session) TotalPasses() int { return s.totalPasses }
func (s *Session) BufferSize() int { return len(s.buf) }
func (s *Session) Algorithm() Algorithm { return s.cfg.Algorithm }

// Run performs every pass and releases the target. ctx is checked between
// individual writes; cancellation yields a KindCanceled error.
func (s *Session) Run(ctx context.Context) (summary *Summary, err error) {
	if s.state != stateIdle || s.closed {
		return nil, newError(KindConfig, "run", s.target.Path, errors.New("session already used"))
	}
	s.state = stateRunning

	// На успешном пути цель уже закрыта до события complete
	defer func() {
		if cerr := s.Close(); cerr != nil && err != nil {
			err = multierror.Append(err, cerr)
		}
		if err != nil {
			s.state = stateFailed
			s.log.Error("Затирание прервано", zap.Error(err))
		}
	}()

	s.emit(progress.Start{
		Algorithm:     s.cfg.Algorithm.String(),
		TotalPasses:   s.totalPasses,
		FileSizeBytes: s.target.Size,
		BufferSizeKB:  len(s.buf) / 1024,
	})

	start := s.now()
	throttle := progress.NewThrottleWithClock(progress.IntervalFor(s.cfg.FastMode), s.now)

	for pass := 1; pass <= s.totalPasses; pass++ {
		if err := s.runPass(ctx, pass, throttle); err != nil {
			return nil, err
		}
	}

	elapsed := s.now().Sub(start)
	total := s.target.Size * uint64(s.totalPasses)
	var throughput float64
	if secs := elapsed.Seconds(); secs > 0 {
		throughput = float64(total) / secs / mib
	}

	// complete отправляется только после успешного закрытия цели
	if cerr := s.Close(); cerr != nil {
		return nil, newError(KindIO, "close", s.target.Path, cerr)
	}

	s.state = stateCompleted
	s.emit(progress.Complete{
		TotalTimeSeconds:     elapsed.Seconds(),
		AverageThroughputMBs: throughput,
	})
	s.log.Info("Затирание завершено",
		zap.Uint64("bytes", total),
		zap.Duration("elapsed", elapsed),
		zap.Float64("speed_mbps", throughput))

	return &Summary{
		SessionID:      s.id,
		Target:         s.target,
		Algorithm:      s.cfg.Algorithm,
		Passes:         s.totalPasses,
		BufferSize:     len(s.buf),
		BytesWritten:   total,
		StartTime:      start,
		Elapsed:        elapsed,
		ThroughputMBps: throughput,
	}, nil
}

// runPass: перемотка, заполнение, последовательная запись, sync
func (s *Session) runPass(ctx context.Context, pass int, throttle *progress.Throttle) error {
	path := s.target.Path
	if err := ctx.Err(); err != nil {
		return passError(KindCanceled, "pass", path, pass, 0, err)
	}
	if err := s.writer.Rewind(); err != nil {
		return passError(KindIO, "seek", path, pass, 0, err)
	}

	pattern, err := s.cfg.Algorithm.PatternFor(pass)
	if err != nil {
		return err
	}
	label, err := s.cfg.Algorithm.LabelFor(pass)
	if err != nil {
		return err
	}

	s.emit(progress.PassStart{Pass: pass, TotalPasses: s.totalPasses, Pattern: label})
	s.log.Debug("Проход начат", zap.Int("pass", pass), zap.String("pattern", label))
	throttle.Reset(0)

	// Детерминированный паттерн не меняется внутри прохода
	if !pattern.IsRandom() {
		pattern.Fill(s.buf)
	}

	size := s.target.Size
	var written uint64
	for written < size {
		if err := ctx.Err(); err != nil {
			return passError(KindCanceled, "write", path, pass, written, err)
		}

		n := uint64(len(s.buf))
		if remaining := size - written; remaining < n {
			n = remaining
		}
		chunk := s.buf[:n]

		if pattern.IsRandom() {
			if err := s.rng.Fill(chunk); err != nil {
				return passError(KindIO, "generate random data", path, pass, written, err)
			}
		}

		wn, err := s.writer.WriteFull(ctx, chunk)
		written += uint64(wn)
		if err != nil {
			if ctx.Err() != nil {
				return passError(KindCanceled, "write", path, pass, written, ctx.Err())
			}
			return passError(KindIO, writeOp(err), path, pass, written, err)
		}

		if bps, ok := throttle.Tick(written); ok {
			s.emit(progress.Progress{
				Pass:           pass,
				TotalPasses:    s.totalPasses,
				BytesWritten:   written,
				TotalBytes:     size,
				Percent:        float64(written) / float64(size) * 100,
				BytesPerSecond: bps,
			})
		}
	}

	if !s.cfg.FastMode {
		if err := s.writer.Sync(); err != nil {
			return passError(KindSync, "sync", path, pass, written, err)
		}
	}

	s.emit(progress.PassComplete{Pass: pass, TotalPasses: s.totalPasses})
	s.log.Info("Проход завершён", zap.Int("pass", pass), zap.Int("total", s.totalPasses), zap.Uint64("bytes", written))
	return nil
}

// writeOp уточняет операцию для типичных отказов носителя
func writeOp(err error) string {
	switch {
	case system.IsDiskFull(err):
		return "write (no space left on device)"
	case system.IsNotReady(err):
		return "write (device not ready)"
	default:
		return "write"
	}
}

// emit отправляет событие; ошибка вывода не прерывает затирание
func (s *Session) emit(ev progress.Event) {
	if err := s.reporter.Report(ev); err != nil {
		s.log.Debug("Событие не доставлено", zap.String("event", ev.Type()), zap.Error(err))
	}
}

// Close releases the target handle. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.dev == nil {
		return nil
	}
	if err := s.dev.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Wrap(err, "close target")
	}
	return nil
}
