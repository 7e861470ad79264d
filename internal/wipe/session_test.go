package wipe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securewipe/internal/progress"
)

func writeTarget(t *testing.T, size int, fill byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "target.img")
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte{fill}, size), 0o600))
	return p
}

type recordingDevice struct {
	Device
	writes []int
	failAt int // после стольких байт запись возвращает ошибку; 0 отключает
	total  int
}

var errDiskGone = errors.New("device removed")

func (r *recordingDevice) Write(p []byte) (int, error) {
	if r.failAt > 0 && r.total+len(p) > r.failAt {
		n := r.failAt - r.total
		r.total += n
		r.writes = append(r.writes, n)
		return n, errDiskGone
	}
	r.writes = append(r.writes, len(p))
	r.total += len(p)
	return r.Device.Write(p)
}

// recordWrites подменяет устройство сессии, чтобы считать размеры записей
func recordWrites(s *Session) *recordingDevice {
	rec := &recordingDevice{Device: s.dev}
	s.dev = rec
	s.writer = newThrottledWriter(rec, s.cfg.MaxSpeedMBps, len(s.buf))
	return rec
}

type collector struct {
	mu      sync.Mutex
	events  []progress.Event
	onPass  func(progress.PassComplete)
	onStart func(progress.PassStart)
}

func (c *collector) Report(ev progress.Event) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	switch e := ev.(type) {
	case progress.PassComplete:
		if c.onPass != nil {
			c.onPass(e)
		}
	case progress.PassStart:
		if c.onStart != nil {
			c.onStart(e)
		}
	}
	return nil
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type())
	}
	return out
}

// stepClock сдвигается на step при каждом вызове
func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}

func TestSession_ZeroTenMiB(t *testing.T) {
	const size = 10 * 1024 * 1024
	path := writeTarget(t, size, 0x5A)

	s, err := New(path, Config{Algorithm: Zero, BufferSize: 1 << 20}, Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(size), s.Target().Size)
	assert.Equal(t, TargetRegularFile, s.Target().Type)
	assert.Equal(t, 1<<20, s.BufferSize())

	rec := recordWrites(s)
	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passes)
	assert.Equal(t, uint64(size), summary.BytesWritten)
	assert.Len(t, rec.writes, 10)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, size)
	assert.Equal(t, make([]byte, size), data)
}

func TestSession_DoD5220FiveBytes(t *testing.T) {
	path := writeTarget(t, 5, 0x5A)
	var perPass [][]byte
	col := &collector{onPass: func(progress.PassComplete) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		perPass = append(perPass, data)
	}}

	s, err := New(path, Config{Algorithm: DoD5220, BufferSize: 4096}, Options{Reporter: col})
	require.NoError(t, err)
	rec := recordWrites(s)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{5, 5, 5}, rec.writes)
	require.Len(t, perPass, 3)
	assert.Equal(t, make([]byte, 5), perPass[0])
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 5), perPass[1])
	assert.NotEqual(t, perPass[0], perPass[2])
	assert.NotEqual(t, perPass[1], perPass[2])

	final, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, final, 5)
	assert.Equal(t, perPass[2], final)
}

func TestSession_WriteSizesCoverTarget(t *testing.T) {
	tests := []struct {
		size, buf int
		want      []int
	}{
		{10, 4, []int{4, 4, 2}},
		{8, 4, []int{4, 4}},
		{3, 4, []int{3}},
		{4096*3 + 1, 4096, []int{4096, 4096, 4096, 1}},
	}
	for _, tt := range tests {
		path := writeTarget(t, tt.size, 0x01)
		s, err := New(path, Config{Algorithm: Random, BufferSize: tt.buf}, Options{})
		require.NoError(t, err)
		rec := recordWrites(s)

		_, err = s.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tt.want, rec.writes, "size %d buffer %d", tt.size, tt.buf)

		sum := 0
		for _, n := range rec.writes {
			sum += n
		}
		assert.Equal(t, tt.size, sum)
	}
}

func TestSession_CustomZeroPassesLeavesTargetUntouched(t *testing.T) {
	path := writeTarget(t, 64, 0x5A)
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	st, err := os.Stat(path)
	require.NoError(t, err)

	_, err = New(path, Config{Algorithm: Custom(0)}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	st2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, st.ModTime(), st2.ModTime())
}

func TestSession_ThroughputMatchesFormula(t *testing.T) {
	const size = 64 * 1024
	path := writeTarget(t, size, 0x00)
	col := &collector{}

	s, err := New(path, Config{Algorithm: DoD5220, BufferSize: 4096},
		Options{Reporter: col, Clock: stepClock(10 * time.Millisecond)})
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Greater(t, summary.Elapsed, time.Duration(0))

	want := float64(size*3) / summary.Elapsed.Seconds() / (1024 * 1024)
	assert.InDelta(t, want, summary.ThroughputMBps, 1e-9)

	last := col.events[len(col.events)-1]
	complete, ok := last.(progress.Complete)
	require.True(t, ok)
	assert.InDelta(t, want, complete.AverageThroughputMBs, 1e-9)
	assert.InDelta(t, summary.Elapsed.Seconds(), complete.TotalTimeSeconds, 1e-9)
}

func TestSession_EventSequence(t *testing.T) {
	path := writeTarget(t, 16, 0x00)
	col := &collector{}

	s, err := New(path, Config{Algorithm: DoD5220, BufferSize: 16}, Options{Reporter: col})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"start",
		"pass_start", "pass_complete",
		"pass_start", "pass_complete",
		"pass_start", "pass_complete",
		"complete",
	}, col.types())

	start := col.events[0].(progress.Start)
	assert.Equal(t, "Dod5220", start.Algorithm)
	assert.Equal(t, 3, start.TotalPasses)
	assert.Equal(t, uint64(16), start.FileSizeBytes)

	ps := col.events[3].(progress.PassStart)
	assert.Equal(t, 2, ps.Pass)
	assert.Equal(t, "0xFF", ps.Pattern)
}

func TestSession_ProgressEventsThrottled(t *testing.T) {
	path := writeTarget(t, 40, 0x00)
	col := &collector{}

	// каждый вызов часов +60ms, интервал 100ms: событие на каждую вторую запись
	s, err := New(path, Config{Algorithm: Zero, BufferSize: 4}, Options{Reporter: col, Clock: stepClock(60 * time.Millisecond)})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	var progressEvents []progress.Progress
	for _, ev := range col.events {
		if p, ok := ev.(progress.Progress); ok {
			progressEvents = append(progressEvents, p)
		}
	}
	require.NotEmpty(t, progressEvents)
	assert.Less(t, len(progressEvents), 10)

	prev := uint64(0)
	for _, p := range progressEvents {
		assert.Greater(t, p.BytesWritten, prev)
		assert.Greater(t, p.BytesPerSecond, 0.0)
		assert.Equal(t, uint64(40), p.TotalBytes)
		assert.InDelta(t, float64(p.BytesWritten)/40*100, p.Percent, 1e-9)
		prev = p.BytesWritten
	}
	assert.Equal(t, "pass_complete", col.types()[len(col.events)-2])
}

func TestSession_RandomRegeneratedPerWrite(t *testing.T) {
	const buf = 4096
	path := writeTarget(t, buf*2, 0x00)

	s, err := New(path, Config{Algorithm: Random, BufferSize: buf}, Options{})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, data[:buf], data[buf:])
}

func TestSession_GutmannWritesCyclicPattern(t *testing.T) {
	path := writeTarget(t, 9, 0x00)
	var pass5 []byte
	col := &collector{onPass: func(e progress.PassComplete) {
		if e.Pass == 5 {
			pass5, _ = os.ReadFile(path)
		}
	}}

	s, err := New(path, Config{Algorithm: Gutmann, BufferSize: 9, FastMode: true}, Options{Reporter: col})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []byte{0x92, 0x49, 0x24, 0x92, 0x49, 0x24, 0x92, 0x49, 0x24}, pass5)
}

func TestSession_MissingTarget(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.img"), Config{Algorithm: Zero}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSession_EmptyPath(t *testing.T) {
	_, err := New("", Config{Algorithm: Zero}, Options{})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestSession_WriteFailureAborts(t *testing.T) {
	path := writeTarget(t, 100, 0x00)
	col := &collector{}

	s, err := New(path, Config{Algorithm: DoD5220, BufferSize: 10}, Options{Reporter: col})
	require.NoError(t, err)
	rec := recordWrites(s)
	rec.failAt = 100 + 35 // второй проход, после 35 байт

	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, errDiskGone)

	var we *Error
	require.True(t, errors.As(err, &we))
	assert.Equal(t, 2, we.Pass)
	assert.Equal(t, uint64(35), we.BytesWritten)
	assert.NotContains(t, col.types(), "complete")
}

func TestSession_CancelBetweenWrites(t *testing.T) {
	path := writeTarget(t, 64, 0x00)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	col := &collector{onStart: func(e progress.PassStart) {
		if e.Pass == 2 {
			cancel()
		}
	}}
	s, err := New(path, Config{Algorithm: Custom(3), BufferSize: 8}, Options{Reporter: col})
	require.NoError(t, err)
	rec := recordWrites(s)

	_, err = s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)

	var we *Error
	require.True(t, errors.As(err, &we))
	assert.Equal(t, 2, we.Pass)
	assert.Equal(t, uint64(0), we.BytesWritten)
	assert.Len(t, rec.writes, 8)
}

func TestSession_RunOnlyOnce(t *testing.T) {
	path := writeTarget(t, 8, 0x00)
	s, err := New(path, Config{Algorithm: Zero}, Options{})
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
	assert.NoError(t, s.Close())
}

func TestSession_ReporterErrorsIgnored(t *testing.T) {
	path := writeTarget(t, 32, 0x11)
	failing := progress.ReporterFunc(func(progress.Event) error { return io.ErrClosedPipe })

	s, err := New(path, Config{Algorithm: Zero, BufferSize: 8}, Options{Reporter: failing})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), data)
}

type fakeProbe struct {
	sizeErr error
	closed  bool
}

type closeTracker struct {
	Device
	p *fakeProbe
}

func (c closeTracker) Close() error {
	c.p.closed = true
	return c.Device.Close()
}

func (f *fakeProbe) Classify(string) (TargetType, error) { return TargetBlockDevice, nil }

func (f *fakeProbe) Open(path string, _ TargetType, _ OpenMode) (Device, error) {
	d, err := openTarget(path, TargetRegularFile, OpenMode{})
	if err != nil {
		return nil, err
	}
	return closeTracker{Device: d, p: f}, nil
}

func (f *fakeProbe) Size(d Device, _ TargetType) (uint64, error) {
	if f.sizeErr != nil {
		return 0, f.sizeErr
	}
	return regularFileSize(d)
}

func TestSession_ProbeFailureClosesTarget(t *testing.T) {
	path := writeTarget(t, 16, 0x00)
	probe := &fakeProbe{sizeErr: ErrBlockSizeUnsupported}

	_, err := New(path, Config{Algorithm: Zero}, Options{Probe: probe})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProbe)
	assert.ErrorIs(t, err, ErrBlockSizeUnsupported)
	assert.True(t, probe.closed)
}

func TestSession_BlockDeviceModeAndBuffer(t *testing.T) {
	path := writeTarget(t, 4096, 0x00)
	probe := &fakeProbe{}

	s, err := New(path, Config{Algorithm: Zero}, Options{Probe: probe, AvailableMemory: func() uint64 { return 8 << 30 }})
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Target().IsBlockDevice())
	assert.Equal(t, OpenMode{Sync: true, Direct: true}, s.Target().Mode)
	assert.Equal(t, blockBufferMax, s.BufferSize())
}

func TestSession_BlockDeviceRejectsUnalignedBuffer(t *testing.T) {
	path := writeTarget(t, 4096, 0x00)
	_, err := New(path, Config{Algorithm: Zero, BufferSize: 1000, TargetType: TargetBlockDevice}, Options{Probe: &fakeProbe{}})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestSession_ZeroLengthTarget(t *testing.T) {
	path := writeTarget(t, 0, 0x00)
	col := &collector{}

	s, err := New(path, Config{Algorithm: DoD5220}, Options{Reporter: col})
	require.NoError(t, err)
	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), summary.BytesWritten)
	assert.Equal(t, "complete", col.types()[len(col.events)-1])
}

func TestOpenModeFor(t *testing.T) {
	assert.Equal(t, OpenMode{}, OpenModeFor(TargetRegularFile, false))
	assert.Equal(t, OpenMode{}, OpenModeFor(TargetRegularFile, true))
	assert.Equal(t, OpenMode{Sync: true, Direct: true}, OpenModeFor(TargetBlockDevice, false))
	assert.Equal(t, OpenMode{Direct: true}, OpenModeFor(TargetBlockDevice, true))
}

func TestWriteOp(t *testing.T) {
	assert.Equal(t, "write", writeOp(errDiskGone))
	assert.Equal(t, "write (no space left on device)", writeOp(&os.PathError{Op: "write", Path: "x", Err: syscall.ENOSPC}))
}

var errFlushLost = errors.New("write-back lost")

type failingCloseDevice struct{ Device }

func (d failingCloseDevice) Close() error {
	_ = d.Device.Close()
	return errFlushLost
}

func TestSession_CloseFailureSuppressesComplete(t *testing.T) {
	path := writeTarget(t, 32, 0x00)
	col := &collector{}

	s, err := New(path, Config{Algorithm: Zero, BufferSize: 8}, Options{Reporter: col})
	require.NoError(t, err)
	s.dev = failingCloseDevice{Device: s.dev}

	summary, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, errFlushLost)

	var we *Error
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "close", we.Op)
	assert.NotContains(t, col.types(), "complete")
	assert.Equal(t, "pass_complete", col.types()[len(col.events)-1])
}
