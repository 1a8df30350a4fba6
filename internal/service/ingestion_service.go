// Package service provides business logic implementations.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/repository"
)

// Pipeline is the non-blocking access-log ingestion pipeline (spec §4.B). It
// owns a buffered channel and a fixed pool of worker goroutines that persist
// captured records off the request's hot path. Log never blocks the caller
// and never fails: a full queue is a drop, logged and discarded, never
// propagated.
type Pipeline struct {
	store   repository.AccessLogRepository
	records chan *models.AccessRecord
	wg      sync.WaitGroup
	closed  chan struct{}
	once    sync.Once
}

// NewPipeline creates a Pipeline with the given queue depth and worker
// count, and starts the worker pool immediately.
//
// Parameters:
//   - store: The repository workers use to persist drained records
//   - queueDepth: The capacity of the buffered record channel
//   - workers: The number of persistence worker goroutines to run
//
// Returns:
//   - A running Pipeline
func NewPipeline(store repository.AccessLogRepository, queueDepth, workers int) *Pipeline {
	if queueDepth <= 0 {
		queueDepth = 1
	}
	if workers <= 0 {
		workers = 1
	}

	p := &Pipeline{
		store:   store,
		records: make(chan *models.AccessRecord, queueDepth),
		closed:  make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Log submits a captured record for asynchronous persistence. It returns
// immediately: if the queue is full, the record is dropped and a warning is
// logged, but Log itself never blocks and never returns an error to the
// caller (spec §4.B / §5's drop-on-overflow policy).
//
// Parameters:
//   - record: The record to persist
func (p *Pipeline) Log(record *models.AccessRecord) {
	select {
	case p.records <- record:
	default:
		log.Warn().
			Str("ip_address", record.IPAddress).
			Str("path", record.Path).
			Msg("ingestion queue full, dropping access record")
	}
}

// worker drains records from the channel and persists them until the
// channel is closed and drained.
func (p *Pipeline) worker() {
	defer p.wg.Done()

	for record := range p.records {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.store.Insert(ctx, record); err != nil {
			log.Error().Err(err).Str("ip_address", record.IPAddress).Msg("failed to persist access record")
		}
		cancel()
	}
}

// Close stops accepting new work, signals workers to drain the remaining
// queue, and waits for them to finish, bounded by ctx.
//
// Parameters:
//   - ctx: Deadline for how long to wait for workers to drain
//
// Returns:
//   - Error if ctx expires before all workers finish
func (p *Pipeline) Close(ctx context.Context) error {
	var closeErr error
	p.once.Do(func() {
		close(p.records)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			closeErr = ctx.Err()
		}
		close(p.closed)
	})
	return closeErr
}
