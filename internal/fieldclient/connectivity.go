package fieldclient

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

const (
	defaultPingInterval = 5 * time.Second
	defaultPingTimeout  = 3 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type MonitorConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// ConnectivityMonitor pings the server on a schedule and feeds the result
// into the queue. Coming back online flushes every match in the background,
// so pings keep running and a drop mid-flush aborts the in-flight attempts.
type ConnectivityMonitor struct {
	queue     *Queue
	pinger    Pinger
	cfg       MonitorConfig
	logger    *logging.Logger
	scheduler gocron.Scheduler

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	flushMu  sync.Mutex
	flushing bool
	again    bool
	flushWG  sync.WaitGroup
}

func NewConnectivityMonitor(queue *Queue, pinger Pinger, cfg MonitorConfig, logger *logging.Logger) (*ConnectivityMonitor, error) {
	if queue == nil || pinger == nil {
		return nil, crerr.New("connectivity monitor needs a queue and a pinger")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPingInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPingTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(queue.clock))
	if err != nil {
		return nil, crerr.Wrap(err, "create connectivity scheduler")
	}

	return &ConnectivityMonitor{
		queue:     queue,
		pinger:    pinger,
		cfg:       cfg,
		logger:    logger.Named("fieldclient.connectivity"),
		scheduler: scheduler,
	}, nil
}

// Start schedules the ping job. The first check runs immediately.
func (m *ConnectivityMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	m.ctx, m.cancel = context.WithCancel(ctx)
	runCtx := m.ctx
	m.mu.Unlock()

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.cfg.Interval),
		gocron.NewTask(func() {
			m.Check(runCtx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return crerr.Wrap(err, "schedule connectivity check")
	}

	m.scheduler.Start()
	m.logger.InfoContext(ctx, "connectivity monitor started", "interval", m.cfg.Interval)
	return nil
}

// Check pings once and reports whether the server answered. An
// offline->online edge starts a flush without waiting for it.
func (m *ConnectivityMonitor) Check(ctx context.Context) bool {
	if ctx.Err() != nil {
		return m.queue.Online()
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	err := m.pinger.Ping(pingCtx)
	cancel()

	online := err == nil
	if !m.queue.SetOnline(online) {
		return online
	}

	if !online {
		m.logger.WarnContext(ctx, "server unreachable, queueing locally", "error", err)
		return false
	}

	m.logger.InfoContext(ctx, "server reachable again, flushing queue")
	m.startFlush(ctx)
	return true
}

// startFlush runs FlushAll on its own goroutine. An edge that arrives while
// a flush is running queues exactly one more pass.
func (m *ConnectivityMonitor) startFlush(ctx context.Context) {
	m.flushMu.Lock()
	if m.flushing {
		m.again = true
		m.flushMu.Unlock()
		return
	}
	m.flushing = true
	m.flushWG.Add(1)
	m.flushMu.Unlock()

	go func() {
		defer m.flushWG.Done()
		for {
			m.flushAll(ctx)

			m.flushMu.Lock()
			if !m.again {
				m.flushing = false
				m.flushMu.Unlock()
				return
			}
			m.again = false
			m.flushMu.Unlock()
		}
	}()
}

func (m *ConnectivityMonitor) flushAll(ctx context.Context) {
	results, err := m.queue.FlushAll(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "flush after reconnect failed", "error", err)
		return
	}
	for _, res := range results {
		if res.Err != nil {
			m.logger.WarnContext(ctx, "match flush incomplete", "match_id", res.MatchID, "remaining", res.Remaining, "error", res.Err)
			continue
		}
		m.logger.InfoContext(ctx, "match flushed", "match_id", res.MatchID, "delivered", res.Delivered, "remaining", res.Remaining, "blocked", res.Blocked)
	}
}

// Wait blocks until no reconnect flush is running.
func (m *ConnectivityMonitor) Wait() {
	m.flushWG.Wait()
}

func (m *ConnectivityMonitor) Stop() error {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	err := m.scheduler.Shutdown()
	m.flushWG.Wait()
	if err != nil {
		return crerr.Wrap(err, "stop connectivity scheduler")
	}
	return nil
}
