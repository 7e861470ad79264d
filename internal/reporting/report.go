package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"securewipe/internal/config"
	"securewipe/internal/wipe"
)

const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Report представляет JSON отчёт о сессии затирания
type Report struct {
	SessionID      string    `json:"session_id"`
	Version        string    `json:"version"`
	Hostname       string    `json:"hostname,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Target         string    `json:"target"`
	TargetType     string    `json:"target_type"`
	SizeBytes      uint64    `json:"size_bytes"`
	Algorithm      string    `json:"algorithm"`
	Passes         int       `json:"passes"`
	PassesDone     int       `json:"passes_completed"`
	BufferSizeKB   int       `json:"buffer_size_kb"`
	FastMode       bool      `json:"fast_mode"`
	Status         string    `json:"status"`
	BytesWritten   uint64    `json:"bytes_written"`
	Duration       string    `json:"duration"`
	ThroughputMBps float64   `json:"throughput_mbps"`
	Error          string    `json:"error,omitempty"`
	ExitCode       int       `json:"exit_code"`
}

// Generate строит отчёт по сессии. summary равен nil, если Run завершился ошибкой.
func Generate(s *wipe.Session, summary *wipe.Summary, runErr error, start, end time.Time, exitCode int) *Report {
	target := s.Target()
	r := &Report{
		SessionID:    s.ID(),
		Timestamp:    start,
		Target:       target.Path,
		TargetType:   target.Type.String(),
		SizeBytes:    target.Size,
		Algorithm:    s.Algorithm().ID(),
		Passes:       s.TotalPasses(),
		BufferSizeKB: s.BufferSize() / 1024,
		FastMode:     s.Config().FastMode,
		Duration:     end.Sub(start).String(),
		ExitCode:     exitCode,
	}
	if host, err := os.Hostname(); err == nil {
		r.Hostname = host
	}

	if runErr == nil && summary != nil {
		r.Status = StatusCompleted
		r.PassesDone = summary.Passes
		r.BytesWritten = summary.BytesWritten
		r.Duration = summary.Elapsed.String()
		r.ThroughputMBps = summary.ThroughputMBps
		return r
	}

	r.Status = StatusFailed
	if runErr == nil {
		return r
	}
	r.Error = runErr.Error()
	if errors.Is(runErr, wipe.ErrCanceled) {
		r.Status = StatusCancelled
	}

	// Прогресс до сбоя: завершённые проходы плюс байты текущего
	var we *wipe.Error
	if errors.As(runErr, &we) && we.Pass > 0 {
		r.PassesDone = we.Pass - 1
		r.BytesWritten = uint64(we.Pass-1)*target.Size + we.BytesWritten
	}
	if secs := end.Sub(start).Seconds(); secs > 0 {
		r.ThroughputMBps = float64(r.BytesWritten) / secs / (1024 * 1024)
	}
	return r
}

// Save сохраняет отчёт в JSON файл и возвращает путь; выключенная отчётность даёт ""
func Save(r *Report, cfg config.ReportingConfig) (string, error) {
	if !cfg.Enabled {
		return "", nil
	}

	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return "", errors.Wrap(err, "ошибка создания директории для отчётов")
	}

	filename := fmt.Sprintf("securewipe_report_%s_%s.json", r.Timestamp.Format("20060102_150405"), shortID(r.SessionID))
	path := filepath.Join(cfg.LocalPath, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "ошибка сериализации отчёта")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "ошибка записи отчёта")
	}
	return path, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
