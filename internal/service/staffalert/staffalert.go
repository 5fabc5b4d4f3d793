// Package staffalert fans staff notifications out to the configured sinks without blocking the
// request that raised them.
package staffalert

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hostelhub/hostel-api/internal/observability/metrics"
	"github.com/hostelhub/hostel-api/internal/observability/notify"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
)

const defaultTimeout = 15 * time.Second

// SinkRegistration names a sink for logs and metrics and sets the lowest severity it receives.
type SinkRegistration struct {
	Name        string
	Sink        notify.Sink
	MinSeverity string
}

// Options configures the Service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// Timeout bounds one delivery to all sinks, retries included.
	Timeout time.Duration
	Metrics statsd.Sink
}

// Service delivers events to every sink whose MinSeverity the event meets.
type Service struct {
	logger  *slog.Logger
	sinks   []SinkRegistration
	timeout time.Duration
	metrics statsd.Sink
	now     func() time.Time

	wg sync.WaitGroup
}

// NewService drops registrations without a sink.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var sinks []SinkRegistration
	for _, reg := range opts.Sinks {
		if reg.Sink == nil {
			continue
		}
		if reg.Name == "" {
			reg.Name = "sink"
		}
		sinks = append(sinks, reg)
	}

	return &Service{
		logger:  logger.With("component", "staff_alert"),
		sinks:   sinks,
		timeout: timeout,
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// Enabled reports whether any sink is registered.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}

// Notify queues ev for delivery and returns immediately. Delivery outlives ctx's cancellation
// but not the configured timeout.
func (s *Service) Notify(ctx context.Context, ev notify.Event) {
	if !s.Enabled() {
		return
	}
	if ev.Severity == "" {
		ev.Severity = notify.SeverityInfo
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now()
	}

	var targets []SinkRegistration
	for _, reg := range s.sinks {
		if notify.SeverityRank(ev.Severity) >= notify.SeverityRank(reg.MinSeverity) {
			targets = append(targets, reg)
		}
	}
	if len(targets) == 0 {
		return
	}

	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	var group sync.WaitGroup
	for _, reg := range targets {
		group.Add(1)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer group.Done()
			s.deliver(deliverCtx, reg, ev)
		}()
	}
	go func() {
		group.Wait()
		cancel()
	}()
}

func (s *Service) deliver(ctx context.Context, reg SinkRegistration, ev notify.Event) {
	start := s.now()
	err := reg.Sink.Send(ctx, ev)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		s.logger.ErrorContext(ctx, "staff notification delivery failed",
			"sink", reg.Name,
			"kind", ev.Kind,
			"subject_id", ev.SubjectID,
			"error", err,
		)
	} else {
		s.logger.DebugContext(ctx, "staff notification delivered", "sink", reg.Name, "kind", ev.Kind)
	}
	metrics.EmitDelivery(s.metrics, metrics.Delivery{
		Sink:     reg.Name,
		Kind:     string(ev.Kind),
		Result:   result,
		Duration: time.Since(start),
		Err:      err,
	})
}

// Wait blocks until every queued delivery has finished. Call it during shutdown.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}
