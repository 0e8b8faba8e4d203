package usecase

import (
	"time"

	"github.com/valyala/bytebufferpool"
)

const (
	stageParse     = "parse"
	stageResolve   = "resolve"
	stageAttribute = "attribute"
	stageCorrelate = "correlate"
	stageEvaluate  = "evaluate"
	stageSettle    = "settle"
)

// processingLog accumulates timestamped audit lines for one prediction.
type processingLog struct {
	now     func() time.Time
	entries []string
}

func newProcessingLog(now func() time.Time) *processingLog {
	if now == nil {
		now = time.Now
	}
	return &processingLog{now: now}
}

func (l *processingLog) add(stage, message string) {
	l.entries = append(l.entries, formatProcessingLogEntry(l.now(), stage, message))
}

func (l *processingLog) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// formatProcessingLogEntry renders "<rfc3339> [stage] message".
func formatProcessingLogEntry(at time.Time, stage, message string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = at.UTC().AppendFormat(buf.B, time.RFC3339)
	_, _ = buf.WriteString(" [")
	_, _ = buf.WriteString(stage)
	_, _ = buf.WriteString("] ")
	_, _ = buf.WriteString(message)
	return buf.String()
}
