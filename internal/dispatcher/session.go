package dispatcher

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/vzahanych/nimbus/internal/observability"
	"go.uber.org/zap"
)

// Session adapts a Dispatcher to a single foreground loop: searches are
// dispatched in the background and every result is forwarded onto one
// channel, where Accept filters out superseded generations. Close must be
// called once the loop stops draining Results.
type Session struct {
	dispatcher *Dispatcher
	results    chan Result
	logger     *zap.Logger
	metrics    *observability.Metrics

	done       chan struct{}
	closeOnce  sync.Once
	forwarders conc.WaitGroup
}

func NewSession(d *Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		dispatcher: d,
		results:    make(chan Result, 8),
		logger:     logger,
		metrics:    metrics,
		done:       make(chan struct{}),
	}
}

// Search dispatches cityText and returns its generation.
func (s *Session) Search(ctx context.Context, cityText string) uint64 {
	ticket := s.dispatcher.Dispatch(ctx, cityText)
	s.forwarders.Go(func() {
		var res Result
		select {
		case res = <-ticket.Done:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
		select {
		case s.results <- res:
		case <-s.done:
		case <-ctx.Done():
		}
	})
	return ticket.Generation
}

// Close releases forwarders still waiting on an undrained Results channel
// and waits for them to exit. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.forwarders.Wait()
}

// Results is the channel the foreground loop drains.
func (s *Session) Results() <-chan Result {
	return s.results
}

// Accept reports whether res should be rendered. Stale results are counted
// and dropped.
func (s *Session) Accept(res Result) bool {
	if s.dispatcher.IsLatest(res.Generation) {
		return true
	}
	s.logger.Debug("Dropping stale result",
		zap.Uint64("generation", res.Generation),
		zap.String("query", res.Query))
	s.metrics.StaleResultDropped()
	return false
}
