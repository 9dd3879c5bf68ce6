// Package audit keeps the consent trail.
//
// ConsentLog takes events off the request path through a buffered channel and
// a single worker writes them in batches, on size or on a timer. Stop closes
// the channel and waits for the worker to drain and flush what is left.
package audit

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// Storage persists batches of consent events.
type Storage interface {
	WriteBatch(ctx context.Context, events []ConsentEvent) error
}

// Recorder is what the ledger depends on.
type Recorder interface {
	Record(event ConsentEvent)
}

type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

func (o *Options) defaults() {
	if o.BufferSize <= 0 {
		o.BufferSize = 1000
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
}

type ConsentLog struct {
	ch      chan ConsentEvent
	repo    Storage
	opts    Options
	metrics *metrics.Metrics
	logger  *zap.Logger
	wg      sync.WaitGroup

	// mu orders sends against close(ch): Record sends under the read lock,
	// Stop closes under the write lock.
	mu     sync.RWMutex
	closed bool
}

func NewConsentLog(repo Storage, opts Options, m *metrics.Metrics, logger *zap.Logger) *ConsentLog {
	opts.defaults()
	if m == nil {
		m = metrics.New(nil)
	}
	return &ConsentLog{
		ch:      make(chan ConsentEvent, opts.BufferSize),
		repo:    repo,
		opts:    opts,
		metrics: m,
		logger:  logger.With(zap.String("mod", "consent-audit")),
	}
}

func (l *ConsentLog) Start() {
	l.wg.Add(1)
	go l.worker()
}

// Stop rejects new events, then waits until the backlog is flushed.
func (l *ConsentLog) Stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.ch)
	l.mu.Unlock()

	l.logger.Info("stopping consent audit: flushing buffer")
	l.wg.Wait()
	l.logger.Info("consent audit stopped")
}

// Record enqueues an event without blocking. A full buffer sheds the event to the log.
func (l *ConsentLog) Record(event ConsentEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.logger.Warn("consent event dropped: audit is stopping", zap.String("id", event.ID))
		return
	}

	select {
	case l.ch <- event:
		l.metrics.AuditBufferFill.Set(float64(len(l.ch)))
	default:
		l.logger.Error("consent_audit_overflow",
			zap.String("user_id", event.UserID),
			zap.String("record", string(event.Record)),
			zap.String("policy_id", event.PolicyID),
			zap.Bool("signed", event.Signed),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (l *ConsentLog) worker() {
	defer l.wg.Done()

	batch := make([]ConsentEvent, 0, l.opts.BatchSize)
	ticker := time.NewTicker(l.opts.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// request contexts are long gone by now
		if err := l.repo.WriteBatch(context.Background(), batch); err != nil {
			l.logger.Error("consent audit flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
		l.metrics.AuditBufferFill.Set(float64(len(l.ch)))
	}

	for {
		select {
		case event, ok := <-l.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= l.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Digest fingerprints a signature image for the trail.
func Digest(signature string) string {
	sum := blake2b.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:])
}
