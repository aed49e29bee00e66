// Package sender runs outbound Bot API calls on a small worker pool.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/citybot/core/logger"
	"github.com/m3rciful/citybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the chat's worker queue has no room.
	ErrQueueFull = errors.New("telegram sender: queue full")

	errNilRun = errors.New("telegram sender: nil run function")

	botToken = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options tunes the dispatcher. Zero values select the defaults.
type Options struct {
	// QueueSize is the backlog each worker accepts. All jobs of one chat share
	// a worker, so it is also the per-chat limit.
	QueueSize  int
	Workers    int
	MaxRetries int
	// RetryBackoff is the first pause between attempts; it doubles each time.
	RetryBackoff time.Duration
	// MaxDuration bounds one job including all retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound calls asynchronously. Jobs for one chat always
// land on the same worker, so a chat receives replies in enqueue order.
type Dispatcher struct {
	opts   Options
	shards []chan job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	rr     atomic.Uint64
	failed atomic.Uint64
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, shards: make([]chan job, opts.Workers)}
	d.wg.Add(len(d.shards))
	for i := range d.shards {
		d.shards[i] = make(chan job, opts.QueueSize)
		go d.work(d.shards[i])
	}
	return d
}

// Enqueue schedules run without blocking. run may be repeated after a
// transient network failure.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.shard(ctx) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shard(ctx context.Context) chan job {
	n := uint64(len(d.shards))
	chatID := logger.MetaFrom(ctx).ChatID
	if chatID == 0 {
		return d.shards[d.rr.Add(1)%n]
	}
	if chatID < 0 {
		chatID = -chatID
	}
	return d.shards[uint64(chatID)%n]
}

// ErrorCount returns how many jobs failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close rejects new jobs, runs the queued ones and waits for the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, s := range d.shards {
			close(s)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work(queue <-chan job) {
	defer d.wg.Done()
	for j := range queue {
		d.execute(j)
	}
}

func (d *Dispatcher) execute(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	backoff := d.opts.RetryBackoff
	attempt := 0
	for {
		attempt++
		err := j.run()
		if err == nil {
			level := slog.LevelDebug
			if attempt > 1 {
				level = slog.LevelInfo
			}
			logger.LogEvent(j.ctx, logger.Component("tg.sender"), level, "send.success",
				j.attrs(attempt, time.Since(start))...)
			return
		}

		wait, retry := retryAfter(err, backoff)
		if retry && attempt <= d.opts.MaxRetries {
			logger.Debug(j.ctx, "tg.sender", "send.retry",
				append(j.attrs(attempt, time.Since(start)),
					slog.Duration("backoff", wait),
					slog.String("err", redactToken(err)),
				)...)
			select {
			case <-time.After(wait):
				backoff *= 2
				continue
			case <-ctx.Done():
				err = errors.Join(err, ctx.Err())
			}
		}

		d.failed.Add(1)
		logger.Error(j.ctx, "tg.sender", "send.fail",
			append(j.attrs(attempt, time.Since(start)),
				slog.String("err", redactToken(err)),
				slog.String("err_code", errorKind(err)),
				slog.Bool("retryable", retry),
			)...)
		return
	}
}

func (j job) attrs(attempt int, elapsed time.Duration) []slog.Attr {
	return []slog.Attr{
		slog.String("action", j.action),
		slog.String("endpoint", j.endpoint),
		slog.Int("attempts", attempt),
		slog.Duration("duration", elapsed),
	}
}

// retryAfter decides whether err is worth another attempt and how long to
// wait first. Flood control dictates its own pause.
func retryAfter(err error, backoff time.Duration) (time.Duration, bool) {
	if flood, ok := asFlood(err); ok {
		return time.Duration(max(flood.RetryAfter, 1)) * time.Second, true
	}
	return backoff, netutil.Transient(err)
}

func asFlood(err error) (tele.FloodError, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return flood, true
	}
	var floodPtr *tele.FloodError
	if errors.As(err, &floodPtr) && floodPtr != nil {
		return *floodPtr, true
	}
	return tele.FloodError{}, false
}

// errorKind groups failures for the err_code field.
func errorKind(err error) string {
	var (
		apiErr *tele.Error
		dnsErr *net.DNSError
		netErr net.Error
	)
	if _, ok := asFlood(err); ok {
		return "flood"
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &apiErr):
		if apiErr.Code >= 500 {
			return "http_5xx"
		}
		return "http_4xx"
	case errors.As(err, &dnsErr):
		return "dns"
	case netutil.BeforeSend(err):
		return "dial"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case netutil.Transient(err):
		return "network"
	}
	return "unknown"
}

// redactToken hides the bot token that Bot API URLs embed in error texts.
func redactToken(err error) string {
	return botToken.ReplaceAllString(err.Error(), "bot<redacted>")
}
