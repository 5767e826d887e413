package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prospect"
)

// Ensure LoggingAnalyzer implements prospect.Analyzer.
var _ prospect.Analyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps an Analyzer with logging.
type LoggingAnalyzer struct {
	next   prospect.Analyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next prospect.Analyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// Analyze logs the corpus size and the analyzed company name.
func (a *LoggingAnalyzer) Analyze(ctx context.Context, corpus *prospect.Corpus) (analysis *prospect.Analysis, err error) {
	defer func(begin time.Time) {
		company := ""
		if analysis != nil {
			company = analysis.CompanyName
		}
		a.logger.Info("analyze",
			"url", corpus.BaseURL,
			"chars", corpus.TotalChars(),
			"company", company,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Analyze(ctx, corpus)
}

// Ensure LoggingDrafter implements prospect.Drafter.
var _ prospect.Drafter = (*LoggingDrafter)(nil)

// LoggingDrafter wraps a Drafter with logging.
type LoggingDrafter struct {
	next   prospect.Drafter
	logger *slog.Logger
}

// NewLoggingDrafter creates a new LoggingDrafter.
func NewLoggingDrafter(next prospect.Drafter, logger *slog.Logger) *LoggingDrafter {
	return &LoggingDrafter{next: next, logger: logger}
}

// Draft logs the tone and resulting subject line.
func (d *LoggingDrafter) Draft(ctx context.Context, analysis *prospect.Analysis, opts prospect.DraftOptions) (draft *prospect.EmailDraft, err error) {
	defer func(begin time.Time) {
		subject := ""
		if draft != nil {
			subject = draft.Subject
		}
		d.logger.Info("draft",
			"company", analysis.CompanyName,
			"tone", string(opts.Tone),
			"subject", subject,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Draft(ctx, analysis, opts)
}

// Ensure LoggingSender implements prospect.Sender.
var _ prospect.Sender = (*LoggingSender)(nil)

// LoggingSender wraps a Sender with logging.
type LoggingSender struct {
	next   prospect.Sender
	logger *slog.Logger
}

// NewLoggingSender creates a new LoggingSender.
func NewLoggingSender(next prospect.Sender, logger *slog.Logger) *LoggingSender {
	return &LoggingSender{next: next, logger: logger}
}

// Send logs the recipient and outcome. Message bodies are never logged.
func (s *LoggingSender) Send(ctx context.Context, draft *prospect.EmailDraft, opts prospect.SendOptions) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("send",
			"to", opts.To,
			"subject", draft.Subject,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Send(ctx, draft, opts)
}
