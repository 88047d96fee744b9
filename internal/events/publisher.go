// Package events publishes build-completed notifications over NATS. The
// publisher is optional; a build runs identically with events disabled.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/quillworks/pressbuild/internal/config"
	"github.com/quillworks/pressbuild/internal/logfields"
	"github.com/quillworks/pressbuild/internal/pipeline"
)

// BuildEvent is the wire shape of one build notification.
type BuildEvent struct {
	PassID     string `json:"passId"`
	Outcome    string `json:"outcome"`
	Articles   int    `json:"articles"`
	SearchDocs int    `json:"searchDocs"`
	IndexBytes int    `json:"indexBytes"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// Publisher sends build events to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server. It returns (nil, nil)
// when no URL is configured, which callers treat as events-off.
func NewPublisher(cfg config.EventsConfig) (*Publisher, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}

	conn, err := nats.Connect(cfg.NATSURL, nats.Name("pressbuild"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", cfg.NATSURL, err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "pressbuild.builds"
	}

	slog.Info("Build event publisher connected",
		slog.String("url", cfg.NATSURL), slog.String("subject", subject))
	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish sends one event for a finished pass. Publishing failures are
// logged, never propagated; a flaky broker must not fail a good build.
func (p *Publisher) Publish(report *pipeline.Report, buildErr error) {
	if p == nil {
		return
	}

	event := BuildEvent{
		PassID:     report.PassID,
		Outcome:    report.Outcome,
		Articles:   report.Articles,
		SearchDocs: report.SearchDocs,
		IndexBytes: report.IndexBytes,
		DurationMS: report.Duration().Milliseconds(),
	}
	if buildErr != nil {
		event.Error = buildErr.Error()
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to marshal build event", logfields.Error(err))
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		slog.Warn("Failed to publish build event",
			logfields.Pass(report.PassID), logfields.Error(err))
		return
	}
	slog.Debug("Build event published", logfields.Pass(report.PassID))
}

// Close drains the connection so queued events flush before shutdown.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
