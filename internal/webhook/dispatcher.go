package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
)

const (
	APIKeyHeader    = "X-Api-Key"
	EventTypeHeader = "X-Event-Type"

	defaultMaxWorkers   = 4
	defaultJobQueueSize = 100
	defaultTimeout      = 5 * time.Second
)

type Job struct {
	EventID   string
	EventType string
	Body      []byte
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

// Start runs the worker until ctx is cancelled. A job already received is always finished.
func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("webhook worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("webhook worker processing job", "worker_id", w.ID, "event_id", job.EventID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("webhook worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Stats struct {
	Delivered int64
	Failed    int64
	Dropped   int64
}

// Dispatcher POSTs domain events to the configured URL from a fixed pool of workers.
type Dispatcher struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int

	// stopWorkers ends the worker loops once the queue is drained;
	// abortDelivery cancels in-flight requests when the drain deadline passes.
	workersCtx    context.Context
	stopWorkers   context.CancelFunc
	deliveryCtx   context.Context
	abortDelivery context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewDispatcher(cfg internal.WebhookConfig, logger *slog.Logger) *Dispatcher {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	jobQueueSize := cfg.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = defaultJobQueueSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	deliveryCtx, abortDelivery := context.WithCancel(context.Background())

	d := &Dispatcher{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, maxWorkers),

		workersCtx:    workersCtx,
		stopWorkers:   stopWorkers,
		deliveryCtx:   deliveryCtx,
		abortDelivery: abortDelivery,
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.workersCtx, &d.wg, d.deliver)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("webhook worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue),
			"url", d.url)
	})
}

// dispatch hands queued jobs to idle workers until the queue is closed and empty.
func (d *Dispatcher) dispatch() {
	defer d.wg.Done()
	defer d.stopWorkers()

	for job := range d.jobQueue {
		select {
		case jobChannel := <-d.workerPool:
			select {
			case jobChannel <- job:
			case <-d.workersCtx.Done():
				return
			}
		case <-d.workersCtx.Done():
			return
		}
	}
	d.logger.Info("webhook dispatcher drained")
}

// Subscribe forwards every domain event published on bus to the webhook.
func (d *Dispatcher) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(d.HandleEvent)
}

// HandleEvent queues e for delivery. A full queue drops the event.
func (d *Dispatcher) HandleEvent(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.EventID(), err)
	}
	d.Enqueue(Job{EventID: e.EventID(), EventType: e.EventType(), Body: body})
	return nil
}

// Enqueue reports whether job was accepted.
func (d *Dispatcher) Enqueue(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("webhook dispatcher closed, dropping event", "event_id", job.EventID, "event_type", job.EventType)
		return false
	}

	select {
	case d.jobQueue <- job:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("webhook queue full, dropping event",
			"event_id", job.EventID,
			"event_type", job.EventType,
			"queue_capacity", cap(d.jobQueue))
		return false
	}
}

func (d *Dispatcher) deliver(job Job) {
	ctx, cancel := context.WithTimeout(d.deliveryCtx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(job.Body))
	if err != nil {
		d.failed.Add(1)
		d.logger.Error("failed to create webhook request", "event_id", job.EventID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventTypeHeader, job.EventType)
	if d.apiKey != "" {
		req.Header.Set(APIKeyHeader, d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.failed.Add(1)
		d.logger.Error("webhook delivery failed", "event_id", job.EventID, "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.failed.Add(1)
		d.logger.Warn("webhook endpoint rejected event",
			"event_id", job.EventID,
			"status_code", resp.StatusCode)
		return
	}

	d.delivered.Add(1)
	d.logger.Debug("webhook delivered", "event_id", job.EventID, "event_type", job.EventType)
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

// Shutdown stops accepting events and waits for queued ones to be delivered.
// When ctx expires first, in-flight requests are cancelled and the rest are abandoned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobQueue)
	}
	d.mu.Unlock()

	d.logger.Info("shutting down webhook dispatcher", "pending", len(d.jobQueue))

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.abortDelivery()
		d.logger.Info("webhook dispatcher shutdown complete", "delivered", d.delivered.Load(), "failed", d.failed.Load())
		return nil
	case <-ctx.Done():
		d.abortDelivery()
		d.stopWorkers()
		<-done
		d.logger.Warn("webhook dispatcher shutdown timed out", "abandoned", len(d.jobQueue))
		return ctx.Err()
	}
}
