// Package progress defines the wipe lifecycle events and the reporters that
// present them, either as line-delimited JSON or as a terminal progress bar.
package progress

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Event is one of the structs below; Type returns its wire tag.
type Event interface {
	Type() string
}

// Start открывает сессию
type Start struct {
	Algorithm     string `json:"algorithm"`
	TotalPasses   int    `json:"total_passes"`
	FileSizeBytes uint64 `json:"file_size_bytes"`
	BufferSizeKB  int    `json:"buffer_size_kb"`
}

type PassStart struct {
	Pass        int    `json:"pass"`
	TotalPasses int    `json:"total_passes"`
	Pattern     string `json:"pattern"`
}

// Progress BytesPerSecond считается с момента предыдущего события, а не в среднем
type Progress struct {
	Pass           int     `json:"pass"`
	TotalPasses    int     `json:"total_passes"`
	BytesWritten   uint64  `json:"bytes_written"`
	TotalBytes     uint64  `json:"total_bytes"`
	Percent        float64 `json:"percent"`
	BytesPerSecond float64 `json:"bytes_per_second"`
}

type PassComplete struct {
	Pass        int `json:"pass"`
	TotalPasses int `json:"total_passes"`
}

type Complete struct {
	TotalTimeSeconds     float64 `json:"total_time_seconds"`
	AverageThroughputMBs float64 `json:"average_throughput_mb_s"`
}

type Error struct {
	Message string `json:"message"`
}

type DemoFileCreated struct {
	Path   string `json:"path"`
	SizeMB uint64 `json:"size_mb"`
}

type DemoFileCreating struct {
	BytesWritten uint64  `json:"bytes_written"`
	TotalBytes   uint64  `json:"total_bytes"`
	Percent      float64 `json:"percent"`
}

type Info struct {
	Message string `json:"message"`
}

func (Start) Type() string            { return "start" }
func (PassStart) Type() string        { return "pass_start" }
func (Progress) Type() string         { return "progress" }
func (PassComplete) Type() string     { return "pass_complete" }
func (Complete) Type() string         { return "complete" }
func (Error) Type() string            { return "error" }
func (DemoFileCreated) Type() string  { return "demo_file_created" }
func (DemoFileCreating) Type() string { return "demo_file_creating" }
func (Info) Type() string             { return "info" }

// Каждое событие сериализуется с полем "type" первым

func (e Start) MarshalJSON() ([]byte, error) {
	type plain Start
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e PassStart) MarshalJSON() ([]byte, error) {
	type plain PassStart
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e Progress) MarshalJSON() ([]byte, error) {
	type plain Progress
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e PassComplete) MarshalJSON() ([]byte, error) {
	type plain PassComplete
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e Complete) MarshalJSON() ([]byte, error) {
	type plain Complete
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e Error) MarshalJSON() ([]byte, error) {
	type plain Error
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e DemoFileCreated) MarshalJSON() ([]byte, error) {
	type plain DemoFileCreated
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e DemoFileCreating) MarshalJSON() ([]byte, error) {
	type plain DemoFileCreating
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

func (e Info) MarshalJSON() ([]byte, error) {
	type plain Info
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{e.Type(), plain(e)})
}

// Decode parses one JSON line back into its concrete event type.
func Decode(line []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, errors.Wrap(err, "decode event type")
	}

	var ev Event
	var err error
	switch head.Type {
	case "start":
		ev, err = decodeAs[Start](line)
	case "pass_start":
		ev, err = decodeAs[PassStart](line)
	case "progress":
		ev, err = decodeAs[Progress](line)
	case "pass_complete":
		ev, err = decodeAs[PassComplete](line)
	case "complete":
		ev, err = decodeAs[Complete](line)
	case "error":
		ev, err = decodeAs[Error](line)
	case "demo_file_created":
		ev, err = decodeAs[DemoFileCreated](line)
	case "demo_file_creating":
		ev, err = decodeAs[DemoFileCreating](line)
	case "info":
		ev, err = decodeAs[Info](line)
	default:
		return nil, errors.Newf("unknown event type %q", head.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s event", head.Type)
	}
	return ev, nil
}

func decodeAs[T Event](line []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(line, &v); err != nil {
		return nil, err
	}
	return v, nil
}
