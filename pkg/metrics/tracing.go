package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Span times a single operation. When the context carries a New Relic
// transaction, the span is also reported as a segment of it.
//
// A nil *Span is valid and does nothing.
type Span struct {
	ctx        context.Context
	metricName string
	start      time.Time

	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// StartSpan starts timing operation within component. The elapsed time is
// recorded as the "<component>/<operation>" duration metric on Finish.
func StartSpan(ctx context.Context, component, operation string) *Span {
	s := &Span{
		ctx:        ctx,
		metricName: component + "/" + operation,
		start:      time.Now(),
	}

	if txn := newrelic.FromContext(ctx); txn != nil {
		s.txn = txn
		s.seg = txn.StartSegment(component + " " + operation)
	}

	return s
}

// SetAttributes attaches metadata to the segment
func (s *Span) SetAttributes(attributes map[string]interface{}) {
	if s == nil || s.seg == nil {
		return
	}

	for key, value := range attributes {
		s.seg.AddAttribute(key, value)
	}
}

// Fail reports err against the enclosing transaction. A nil err is ignored.
func (s *Span) Fail(err error) {
	if s == nil || err == nil || s.txn == nil {
		return
	}

	s.txn.NoticeError(err)
}

// Finish ends the segment and records the span's duration
func (s *Span) Finish() time.Duration {
	if s == nil {
		return 0
	}

	elapsed := time.Since(s.start)
	if s.seg != nil {
		s.seg.End()
	}
	RecordDuration(s.ctx, s.metricName, elapsed)
	return elapsed
}
