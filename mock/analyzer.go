package mock

import (
	"context"

	"github.com/fwojciec/prospect"
)

var _ prospect.Analyzer = (*Analyzer)(nil)

// Analyzer is a mock implementation of prospect.Analyzer.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, corpus *prospect.Corpus) (*prospect.Analysis, error)
}

func (a *Analyzer) Analyze(ctx context.Context, corpus *prospect.Corpus) (*prospect.Analysis, error) {
	return a.AnalyzeFn(ctx, corpus)
}

var _ prospect.Drafter = (*Drafter)(nil)

// Drafter is a mock implementation of prospect.Drafter.
type Drafter struct {
	DraftFn func(ctx context.Context, analysis *prospect.Analysis, opts prospect.DraftOptions) (*prospect.EmailDraft, error)
}

func (d *Drafter) Draft(ctx context.Context, analysis *prospect.Analysis, opts prospect.DraftOptions) (*prospect.EmailDraft, error) {
	return d.DraftFn(ctx, analysis, opts)
}

var _ prospect.Sender = (*Sender)(nil)

// Sender is a mock implementation of prospect.Sender.
type Sender struct {
	SendFn func(ctx context.Context, draft *prospect.EmailDraft, opts prospect.SendOptions) error
}

func (s *Sender) Send(ctx context.Context, draft *prospect.EmailDraft, opts prospect.SendOptions) error {
	return s.SendFn(ctx, draft, opts)
}
