package service

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
)

// upsert latencies are tracked in microseconds up to one minute
const (
	latencyMinMicros = 1
	latencyMaxMicros = int64(time.Minute / time.Microsecond)
	latencySigFigs   = 3
)

type latencyRecorder struct {
	hist *hdrhistogram.Histogram
}

func newLatencyRecorder() *latencyRecorder {
	return &latencyRecorder{hist: hdrhistogram.New(latencyMinMicros, latencyMaxMicros, latencySigFigs)}
}

func (l *latencyRecorder) Record(d time.Duration) {
	micros := d.Microseconds()
	if micros < latencyMinMicros {
		micros = latencyMinMicros
	}
	if micros > latencyMaxMicros {
		micros = latencyMaxMicros
	}
	_ = l.hist.RecordValue(micros)
}

func (l *latencyRecorder) Summary() ingestdomain.Latency {
	if l.hist.TotalCount() == 0 {
		return ingestdomain.Latency{}
	}
	at := func(q float64) time.Duration {
		return time.Duration(l.hist.ValueAtQuantile(q)) * time.Microsecond
	}
	return ingestdomain.Latency{
		Count: l.hist.TotalCount(),
		P50:   at(50),
		P95:   at(95),
		P99:   at(99),
		Max:   time.Duration(l.hist.Max()) * time.Microsecond,
	}
}
