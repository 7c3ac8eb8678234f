package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is the reference polling cadence.
const DefaultPollInterval = 2 * time.Second

// Poller periodically asks the server for an undelivered AI payload and
// hands it to the session. One polling loop serves one conversation id;
// clearing the chat tears the loop down and starts a fresh one, so a poll
// resolving after the reset can never touch the new thread.
type Poller struct {
	checker  Checker
	session  *Session
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	base   context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller. A non-positive interval falls back to the
// default cadence.
func NewPoller(checker Checker, session *Session, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		checker:  checker,
		session:  session,
		interval: interval,
		logger:   logger,
	}
}

// Start begins polling for the session's current conversation id. A
// running loop is stopped first.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	p.base = ctx
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	go p.run(loopCtx, p.session.ChatID(), done)
}

// Restart tears down the running loop and starts a new one against the
// session's current conversation id. Meant to be called after Clear.
func (p *Poller) Restart() {
	p.mu.Lock()
	base := p.base
	p.mu.Unlock()
	if base == nil {
		base = context.Background()
	}
	p.Start(base)
}

// Stop cancels the polling loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// run is the polling loop: one request per tick, strictly sequential.
// Failures are logged and swallowed; the next tick retries naturally.
func (p *Poller) run(ctx context.Context, chatID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, ok, err := p.checker.CheckResponse(ctx, chatID)
			if err != nil {
				p.logger.Warn("poll failed", zap.Error(err), zap.String("chat_id", chatID))
				continue
			}
			if !ok {
				continue
			}
			// A payload that raced the loop's cancellation belongs to an
			// abandoned conversation; drop it.
			if ctx.Err() != nil {
				return
			}
			p.session.Apply(*payload)
		}
	}
}
