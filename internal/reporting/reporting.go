// Package reporting forwards errors the application absorbs to Sentry.
package reporting

import (
	"maps"
	"sync"
	"time"

	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/getsentry/sentry-go"
)

// Reporter records an error that is handled locally but should stay visible.
type Reporter interface {
	Report(err error, tags map[string]string)
}

// Nop discards every report.
type Nop struct{}

func (Nop) Report(error, map[string]string) {}

// SentryReporter captures reports on a Sentry hub.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter reports through hub, or through the current hub when hub is nil.
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryReporter{hub: hub}
}

func (r *SentryReporter) Report(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

// Init configures the global Sentry client from cfg and returns the matching
// Reporter. Without a DSN reporting is disabled and Nop is returned.
func Init(cfg *config.Config) (Reporter, error) {
	logger := config.GetLogger()
	if cfg.Sentry.DSN == "" {
		logger.Debug().Msg("Sentry DSN not set, error reporting disabled")
		return Nop{}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     config.DefaultUserAgent,
	})
	if err != nil {
		return Nop{}, err
	}
	logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
	return NewSentryReporter(nil), nil
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// Recorder keeps reports in memory. It is used by tests and by callers that
// want to inspect absorbed errors.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

// Report is one recorded error with its tags.
type Report struct {
	Err  error
	Tags map[string]string
}

func (r *Recorder) Report(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Err: err, Tags: maps.Clone(tags)})
}

// Reports returns a copy of the recorded reports.
func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}
