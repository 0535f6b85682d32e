package domain

import (
	"context"
	"fmt"
	"time"
)

// HeaderRunID carries the run id on both request and result messages.
const HeaderRunID = "run_id"

// RawEvent is a simulation request as delivered by the source topic, plus the
// callback that acknowledges it.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Source formats the message position as topic/partition@offset.
func (e RawEvent) Source() string {
	return fmt.Sprintf("%s/%d@%d", e.Topic, e.Partition, e.Offset)
}

// RunIDHint returns the run id carried outside the body: the run_id header
// if set, else the message key.
func (e RawEvent) RunIDHint() string {
	if id := e.Headers[HeaderRunID]; id != "" {
		return id
	}
	return string(e.Key)
}

// OutputEvent is an encoded Result bound for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
