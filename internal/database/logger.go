package database

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/types"
)

const (
	defaultQueueSize    = 256
	defaultInsertTimeout = 5 * time.Second
)

// UsageWriter persists usage documents. *UsageRepository implements it.
type UsageWriter interface {
	Insert(ctx context.Context, doc *UsageDocument) error
}

// UsageLogger writes dispatch usage records asynchronously so the request
// path never waits on MongoDB. Records arriving while the queue is full are
// dropped and counted.
type UsageLogger struct {
	writer        UsageWriter
	environment   string
	version       string
	insertTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan *UsageDocument
	done    chan struct{}
	dropped atomic.Int64
}

// NewUsageLogger starts the background writer.
func NewUsageLogger(writer UsageWriter, environment, version string, queueSize int) *UsageLogger {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	l := &UsageLogger{
		writer:        writer,
		environment:   environment,
		version:       version,
		insertTimeout: defaultInsertTimeout,
		queue:         make(chan *UsageDocument, queueSize),
		done:          make(chan struct{}),
	}
	go l.run()
	return l
}

// RecordUsage enqueues one record without blocking.
func (l *UsageLogger) RecordUsage(ctx context.Context, record types.UsageRecord) {
	doc := &UsageDocument{
		UsageRecord: record,
		Environment: l.environment,
		Version:     l.version,
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.queue <- doc:
	default:
		l.dropped.Add(1)
		logger.Warn(logger.WithComponent(ctx, logger.ComponentNames.Database), "Usage log queue full, record dropped",
			"request_id", record.RequestID)
	}
}

// Dropped returns how many records were discarded.
func (l *UsageLogger) Dropped() int64 {
	return l.dropped.Load()
}

// Close stops accepting records and waits for the queue to drain or ctx to end.
func (l *UsageLogger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *UsageLogger) run() {
	defer close(l.done)
	base := logger.WithStage(logger.WithComponent(context.Background(), logger.ComponentNames.Database), logger.LogStages.DatabaseOperation)

	for doc := range l.queue {
		ctx, cancel := context.WithTimeout(base, l.insertTimeout)
		if err := l.writer.Insert(ctx, doc); err != nil {
			logger.Warn(logger.WithRequestID(ctx, doc.RequestID), "Failed to write usage record", "error", err.Error())
		}
		cancel()
	}
}
