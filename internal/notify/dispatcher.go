package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/emart/pkg/metrics"
)

var ErrClosed = errors.New("dispatcher closed")

type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	SendTimeout time.Duration
	// Backoff is the delay before the second attempt; it doubles after each failure.
	Backoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 1
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 15 * time.Second
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	return o
}

type job struct {
	id      string
	event   Event
	to      string
	subject string
	body    string
}

// Dispatcher is an in-process outbound queue drained by a fixed worker pool.
type Dispatcher struct {
	mailer  Mailer
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Shop

	mu     sync.RWMutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
	stop   chan struct{}
}

func NewDispatcher(mailer Mailer, opts Options, logger *slog.Logger, m *metrics.Shop) *Dispatcher {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		mailer:  mailer,
		opts:    opts,
		logger:  logger.With("component", "notify.dispatcher"),
		metrics: m,
		queue:   make(chan job, opts.QueueSize),
		stop:    make(chan struct{}),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Notify renders the message and queues it. It never blocks on delivery.
func (d *Dispatcher) Notify(ctx context.Context, event Event, recipient string, payload any) Result {
	l := d.logger.With("event", string(event), "to", recipient)

	if recipient == "" {
		l.Warn("notify_skipped", "reason", "empty recipient")
		d.metrics.Notification(string(event), "skipped")
		return Result{Success: false, Message: "no recipient"}
	}

	subject, body, err := Render(event, payload)
	if err != nil {
		l.Error("notify_render_error", "error", err)
		d.metrics.Notification(string(event), "failed")
		return Result{Success: false, Message: "failed to render email"}
	}

	j := job{id: uuid.NewString(), event: event, to: recipient, subject: subject, body: body}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		l.Warn("notify_dropped", "reason", ErrClosed.Error())
		d.metrics.Notification(string(event), "dropped")
		return Result{Success: false, Message: ErrClosed.Error()}
	}

	select {
	case d.queue <- j:
		l.Debug("notify_queued", "job_id", j.id)
		return Result{Success: true, Message: "email queued"}
	default:
		l.Warn("notify_dropped", "reason", "queue full", "queue_size", d.opts.QueueSize)
		d.metrics.Notification(string(event), "dropped")
		return Result{Success: false, Message: "notification queue full"}
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	l := d.logger.With("event", string(j.event), "to", j.to, "job_id", j.id)
	backoff := d.opts.Backoff

	var err error
	attempts := 0
retry:
	for attempts < d.opts.MaxAttempts {
		attempts++
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.SendTimeout)
		err = d.mailer.Send(ctx, j.to, j.subject, j.body)
		cancel()
		if err == nil {
			l.Info("email_sent", "attempt", attempts)
			d.metrics.Notification(string(j.event), "sent")
			return
		}

		l.Warn("email_send_failed", "attempt", attempts, "error", err)
		if attempts == d.opts.MaxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-d.stop:
			break retry
		}
		backoff *= 2
	}

	l.Error("email_undelivered", "attempts", attempts, "error", err)
	d.metrics.Notification(string(j.event), "failed")
}

// Close stops intake and waits for queued mail to drain or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		close(d.stop)
		return ctx.Err()
	}
}
