package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SakutaArc/QuickFund/internal/api/metrics"
	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher ships committed ledger entries to the audit store on a fixed set
// of workers. Entries are sharded by project id, so a project's entries are
// written in commit order.
type Dispatcher struct {
	workers []chan domain.LedgerEntry
	store   ports.LedgerEntryRepository
	log     zerolog.Logger

	mu       sync.RWMutex
	started  bool
	stopped  bool
	stopOnce sync.Once
	wg       sync.WaitGroup
	drained  chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.LedgerEntryRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.LedgerEntry, numWorkers),
		store:   store,
		log:     log,
		drained: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LedgerEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx stops intake like
// Stop does; entries already queued are still written.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	d.started = true
	d.mu.Unlock()

	base := context.WithoutCancel(ctx)
	d.wg.Add(len(d.workers))
	for i, ch := range d.workers {
		go d.runWorker(base, i, ch)
	}
	go func() {
		d.wg.Wait()
		close(d.drained)
	}()
	go func() {
		select {
		case <-ctx.Done():
			d.close()
		case <-d.drained:
		}
	}()
}

// Stop closes intake and waits until every queued entry has been written or
// ctx expires. Entries recorded after Stop are dropped and counted.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.close()

	d.mu.RLock()
	started := d.started
	d.mu.RUnlock()
	if !started {
		return nil
	}

	select {
	case <-d.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) close() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
		d.mu.Unlock()
	})
}

// Record hands the entry to the worker responsible for its project. It never
// blocks: when that worker's channel is full, or the dispatcher is stopped,
// the entry is dropped and counted.
func (d *Dispatcher) Record(entry domain.LedgerEntry) {
	idx := d.shardIndex(entry.ProjectID)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.drop(entry, idx, "audit dispatcher stopped, entry dropped")
		return
	}

	select {
	case d.workers[idx] <- entry:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(entry, idx, "audit queue full, entry dropped")
	}
}

func (d *Dispatcher) drop(entry domain.LedgerEntry, idx int, msg string) {
	metrics.AuditEntriesDroppedTotal.Inc()
	d.log.Warn().
		Str("entry_id", entry.ID).
		Int64("project_id", entry.ProjectID).
		Int("worker_id", idx).
		Msg(msg)
}

// shardIndex maps a project id deterministically to a worker index.
func (d *Dispatcher) shardIndex(projectID int64) int {
	n := int64(len(d.workers))
	idx := projectID % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

// runWorker writes entries until its channel is closed and drained.
func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.LedgerEntry) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for entry := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.write(ctx, id, entry)
	}
}

func (d *Dispatcher) write(ctx context.Context, workerID int, entry domain.LedgerEntry) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := d.store.Insert(ctx, &entry); err != nil {
		metrics.AuditWriteErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("entry_id", entry.ID).
			Int64("project_id", entry.ProjectID).
			Int("worker_id", workerID).
			Msg("audit write failed")
	}
}
