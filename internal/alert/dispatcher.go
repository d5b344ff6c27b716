package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers       = 2
	defaultQueueSize     = 256
	defaultRatePerSecond = 5
)

var (
	ErrQueueFull = errors.New("alert queue is full")
	ErrClosed    = errors.New("alert dispatcher is closed")
)

// Deliverer performs a single delivery attempt.
type Deliverer interface {
	Send(ctx context.Context, a Alert) error
}

type DispatcherConfig struct {
	Workers   int
	QueueSize int
	// Timeout bounds one delivery attempt.
	Timeout       time.Duration
	RatePerSecond float64
}

type Dispatcher struct {
	logger  *zap.Logger
	sender  Deliverer
	queue   chan Alert
	limiter *rate.Limiter
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(logger *zap.Logger, sender Deliverer, cfg DispatcherConfig) *Dispatcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = defaultRatePerSecond
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}

	return &Dispatcher{
		logger:  logger.Named("dispatcher"),
		sender:  sender,
		queue:   make(chan Alert, queueSize),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		workers: workers,
		timeout: timeout,
	}
}

// Start launches the delivery workers. Non-blocking. Cancelling ctx lifts
// the rate limit so the queue drains quickly; the workers only exit in Close.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.started {
		return
	}
	d.started = true
	for range d.workers {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.logger.Info("Alert dispatcher started",
		zap.Int("workers", d.workers),
		zap.Int("queue_size", cap(d.queue)),
		zap.Float64("rate_per_second", float64(d.limiter.Limit())),
	)
}

// Close stops accepting alerts and waits for the workers to deliver what is
// queued. Alerts still queued when no worker ever ran are logged as dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	for a := range d.queue {
		d.logDropped(a, ErrClosed)
	}
	dispatchQueueDepth.Set(0)
}

// Notify enqueues a for delivery without blocking. Delivery does not depend
// on ctx: the caller going away never cancels an accepted alert.
func (d *Dispatcher) Notify(ctx context.Context, a Alert) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logDropped(a, ErrClosed)
		return ErrClosed
	}

	select {
	case d.queue <- a:
		dispatchQueueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		webhookSendTotal.WithLabelValues("dropped").Inc()
		d.logDropped(a, ErrQueueFull)
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for a := range d.queue {
		dispatchQueueDepth.Set(float64(len(d.queue)))
		d.deliver(ctx, a)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, a Alert) {
	if err := d.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			d.logFailed(a, err)
			return
		}
	}
	// shutting down must not abort the attempt itself
	ctx = context.WithoutCancel(ctx)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, a); err != nil {
		d.logFailed(a, err)
		return
	}
	d.logger.Info("Alert delivered",
		zap.String("alert_id", a.ID),
		zap.String("actor", a.Actor),
	)
}

func (d *Dispatcher) logFailed(a Alert, err error) {
	fields := []zap.Field{
		zap.String("alert_id", a.ID),
		zap.String("content", a.Text),
		zap.Error(err),
	}
	var de *DeliveryError
	if errors.As(err, &de) && de.StatusCode != 0 {
		fields = append(fields, zap.Int("status", de.StatusCode))
	}
	d.logger.Error("Alert delivery failed", fields...)
}

func (d *Dispatcher) logDropped(a Alert, err error) {
	d.logger.Error("Alert dropped before delivery",
		zap.String("alert_id", a.ID),
		zap.String("content", a.Text),
		zap.Error(err),
	)
}
