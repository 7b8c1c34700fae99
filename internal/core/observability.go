package core

import (
	"context"
	"time"
)

// Logger is the minimal structured logging surface used by the service.
// Arguments are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock abstracts time acquisition so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns the function's current time.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// AuditStatus describes the outcome recorded for an audited operation.
type AuditStatus string

const (
	// AuditStatusSuccess marks a committed operation.
	AuditStatusSuccess AuditStatus = "success"
	// AuditStatusError marks a rejected or failed operation.
	AuditStatusError AuditStatus = "error"
)

// AuditEntry captures one service operation for the audit trail.
type AuditEntry struct {
	Operation  string
	Entity     EntityType
	EntityID   string
	Action     Action
	Status     AuditStatus
	Error      string
	Violations []Violation
	Duration   time.Duration
	Timestamp  time.Time
}

// AuditRecorder receives audit entries emitted by the service.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes operation outcomes for metric export.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan terminates a trace started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithLogger installs a structured logger. The default discards everything.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the service clock, primarily for tests.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAuditRecorder installs an audit sink.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(s *Service) { s.audit = recorder }
}

// WithMetricsRecorder installs a metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = recorder }
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tracer }
}

// observe wraps one service operation with tracing, metrics, audit and
// logging. The returned values are passed through unchanged.
func (s *Service) observe(ctx context.Context, op string, entity EntityType, entityID string, action Action, fn func(ctx context.Context) (Result, error)) (Result, error) {
	started := s.clock.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}

	res, err := fn(ctx)

	duration := s.clock.Now().Sub(started)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, duration)
	}
	if s.audit != nil {
		entry := AuditEntry{
			Operation:  op,
			Entity:     entity,
			EntityID:   entityID,
			Action:     action,
			Status:     AuditStatusSuccess,
			Violations: res.Violations,
			Duration:   duration,
			Timestamp:  started,
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	if err != nil {
		s.logger.Error(op+" failed", "entity", string(entity), "id", entityID, "error", err)
	} else {
		for _, v := range res.Violations {
			if v.Severity == SeverityLog {
				s.logger.Info(op+" noted by rule", "rule", v.Rule, "id", v.EntityID, "message", v.Message)
			} else {
				s.logger.Warn(op+" committed with violation", "rule", v.Rule, "id", v.EntityID, "message", v.Message)
			}
		}
		s.logger.Debug(op+" ok", "entity", string(entity), "id", entityID, "duration", duration)
	}
	return res, err
}
