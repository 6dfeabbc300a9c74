package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation identifies which pipeline stage produced a record.
type Operation string

const (
	OperationCompress  Operation = "compress"
	OperationTranscode Operation = "transcode"
	OperationFrames    Operation = "frames"
	OperationSketch    Operation = "sketch"
)

var validOperations = map[Operation]struct{}{
	OperationCompress:  {},
	OperationTranscode: {},
	OperationFrames:    {},
	OperationSketch:    {},
}

// Valid reports whether the operation names a known pipeline stage.
func (o Operation) Valid() bool {
	_, ok := validOperations[o]
	return ok
}

// Record is one processed-asset row. Detail carries stage-specific
// information (chosen encoder configuration, quality ladder position,
// sampled timestamps) as JSON.
type Record struct {
	ID              string
	SourcePath      string
	Operation       Operation
	InputMediaType  string
	OutputMediaType string
	InputBytes      int64
	OutputBytes     int64
	Passthrough     bool
	DetailJSON      string
	CreatedAt       time.Time
}

// SetDetail marshals v into the record's detail column.
func (r *Record) SetDetail(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal detail: %w", err)
	}
	r.DetailJSON = string(data)
	return nil
}

// Detail unmarshals the detail column into v. A record without detail
// leaves v untouched.
func (r *Record) Detail(v any) error {
	if r.DetailJSON == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(r.DetailJSON), v); err != nil {
		return fmt.Errorf("unmarshal detail: %w", err)
	}
	return nil
}

// SavedBytes reports how many bytes the operation removed. Passthrough
// records and size-increasing encodes report zero.
func (r *Record) SavedBytes() int64 {
	if r.Passthrough || r.OutputBytes >= r.InputBytes {
		return 0
	}
	return r.InputBytes - r.OutputBytes
}

// OperationCount aggregates record totals per operation for summaries.
type OperationCount struct {
	Operation   Operation
	Count       int64
	InputBytes  int64
	OutputBytes int64
}
