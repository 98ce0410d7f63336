// Package telemetry wraps sentry-go for tracing service operations and
// reporting failures. Every helper is a no-op until Init succeeds.
package telemetry

import (
	"context"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

const (
	serverName    = "communityd"
	flushTimeout  = 5 * time.Second
	maxQueryChars = 120
)

type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
	Logger           logrus.FieldLogger
}

// Init configures the global Sentry client and returns a flush function.
// An empty DSN or a rejected configuration leaves tracing disabled.
func Init(cfg Config) (func(), error) {
	noop := func() {}
	if cfg.DSN == "" {
		return noop, nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate <= 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		ServerName:       serverName,
		Debug:            cfg.Debug,
		EnableTracing:    true,
		TracesSampler:    sampler(cfg.TracesSampleRate),
		BeforeSend:       scrubEvent,
		AttachStacktrace: true,
	})
	if err != nil {
		logger.WithError(err).Warn("sentry disabled: invalid configuration")
		return noop, nil
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"sample_rate": cfg.TracesSampleRate,
	}).Info("sentry enabled")
	return func() { sentry.Flush(flushTimeout) }, nil
}

// sampler drops health probes, lets child spans inherit their parent's
// decision and samples roots at rate.
func sampler(rate float64) sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		if ctx.Span == nil {
			return rate
		}
		if ctx.Span.Name == "GET /health" {
			return 0
		}
		if ctx.Parent != nil {
			if ctx.Parent.Sampled.Bool() {
				return 1
			}
			return 0
		}
		return rate
	}
}

// scrubEvent removes participant contact data that request context may carry.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Data = ""
		event.Request.Cookies = ""
	}
	if event.User.Email != "" {
		event.User.Email = ""
	}
	return event
}

// SpanAttributes are the fields attached to service spans.
type SpanAttributes struct {
	ParticipantID int64
	Operation     string
	Query         string
	Limit         int
}

// Span is a service-level span. The zero value is safe to use.
type Span struct {
	inner *sentry.Span
}

// StartSpan opens a child of the span in ctx, or a new transaction when ctx
// carries none.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	span.SetData("operation", attrs.Operation)
	if attrs.ParticipantID > 0 {
		span.SetTag("participant_id", strconv.FormatInt(attrs.ParticipantID, 10))
	}
	if attrs.Query != "" {
		span.SetData("query", truncate(attrs.Query, maxQueryChars))
	}
	if attrs.Limit > 0 {
		span.SetData("limit", attrs.Limit)
	}

	return span.Context(), &Span{inner: span}
}

func (s *Span) End() {
	if s != nil && s.inner != nil {
		s.inner.Finish()
	}
}

// SetResultCount records how many items the operation produced.
func (s *Span) SetResultCount(n int) {
	if s != nil && s.inner != nil {
		s.inner.SetData("result_count", n)
	}
}

// SetError marks the span failed. Only server-side failures are reported as
// exceptions; caller mistakes such as validation or not-found are not.
func (s *Span) SetError(err error) {
	if s == nil || s.inner == nil || err == nil {
		return
	}
	code := domain.ErrorCode(err)
	s.inner.SetTag("error_code", code)
	if !Reportable(err) {
		s.inner.Status = sentry.SpanStatusInvalidArgument
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	CaptureError(s.inner.Context(), err)
}

// Reportable reports whether err is a server-side failure worth an exception.
func Reportable(err error) bool {
	switch domain.ErrorCode(err) {
	case domain.ErrCodeValidation, domain.ErrCodeInvalidQuery, domain.ErrCodeInvalidOperation,
		domain.ErrCodeNotFound, domain.ErrCodeAlreadyExists, domain.ErrCodeNoEmbeddingsAvailable:
		return false
	}
	return err != nil
}

// CaptureError sends err to Sentry through the hub in ctx, if any.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// AddBreadcrumb records a step of the current request.
func AddBreadcrumb(ctx context.Context, category, message string) {
	crumb := &sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(crumb, nil)
		return
	}
	sentry.AddBreadcrumb(crumb)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
