// Package outreach runs the prospecting pipeline: crawl a website, analyze
// the company, draft an email and optionally send it.
package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/prospect"
	"golang.org/x/sync/errgroup"
)

// Stage is the pipeline step a Result reached.
type Stage string

// Pipeline stages.
const (
	StageNotStarted Stage = "not_started"
	StageScraping   Stage = "scraping"
	StageAnalyzing  Stage = "analyzing"
	StageDrafting   Stage = "drafting"
	StageReviewing  Stage = "reviewing"
	StageSending    Stage = "sending"
	StageComplete   Stage = "complete"
	StageFailed     Stage = "failed"
)

// ErrNoContent is reported when a website yields no pages.
const ErrNoContent = "Failed to scrape any content from the website."

// Result holds everything a pipeline run produced. Fields for stages that
// were not reached are nil.
type Result struct {
	URL      string
	Corpus   *prospect.Corpus
	Analysis *prospect.Analysis
	Draft    *prospect.EmailDraft
	Record   *prospect.OutreachRecord
	Stage    Stage
	Err      error
}

// Agent wires the pipeline collaborators together.
type Agent struct {
	// NewCrawler returns a crawler for one site. Each pipeline run gets
	// its own crawler so batch items never share a session.
	NewCrawler func() prospect.SiteCrawler

	Analyzer prospect.Analyzer
	Drafter  prospect.Drafter
	Sender   prospect.Sender

	// Outreach records send attempts. Optional.
	Outreach prospect.OutreachService

	// Corpora stores every non-empty crawl. Optional.
	Corpora prospect.CorpusService

	Tone        prospect.Tone
	SenderName  string
	AllowRender bool

	// Concurrency bounds parallel batch items. Values below 1 mean 1.
	Concurrency int

	Logger *slog.Logger
	Now    func() time.Time
}

// RunPipeline runs every stage for url. Without autoSend, or without a
// recipient, the run stops at StageReviewing.
func (a *Agent) RunPipeline(ctx context.Context, url, to string, autoSend bool, progress prospect.ProgressFunc) *Result {
	res := &Result{URL: url, Stage: StageNotStarted}
	log := a.reporter(progress)

	if err := ctx.Err(); err != nil {
		return a.fail(res, err, log)
	}

	res.Stage = StageScraping
	log("Phase 1: Scraping %s...", url)
	res.Corpus = a.NewCrawler().Crawl(ctx, url, a.AllowRender, progress)
	if res.Corpus.Empty() {
		res.Stage = StageFailed
		res.Err = prospect.Errorf(prospect.ENOCONTENT, ErrNoContent)
		return res
	}
	a.saveCorpus(ctx, res.Corpus)

	a.continueFrom(ctx, res, to, autoSend, log)
	return res
}

// RunCorpus runs the analysis, drafting and send stages on a corpus that
// was crawled earlier.
func (a *Agent) RunCorpus(ctx context.Context, corpus *prospect.Corpus, to string, autoSend bool, progress prospect.ProgressFunc) *Result {
	res := &Result{URL: corpus.BaseURL, Corpus: corpus, Stage: StageNotStarted}
	if corpus.Empty() {
		res.Stage = StageFailed
		res.Err = prospect.Errorf(prospect.ENOCONTENT, ErrNoContent)
		return res
	}
	a.continueFrom(ctx, res, to, autoSend, a.reporter(progress))
	return res
}

func (a *Agent) continueFrom(ctx context.Context, res *Result, to string, autoSend bool, log func(string, ...any)) {
	var err error

	res.Stage = StageAnalyzing
	log("Phase 2: Analyzing prospect needs...")
	res.Analysis, err = a.Analyzer.Analyze(ctx, res.Corpus)
	if err != nil {
		a.fail(res, err, log)
		return
	}
	log("Analysis complete: %s", res.Analysis.CompanyName)

	res.Stage = StageDrafting
	log("Phase 3: Drafting outreach email...")
	res.Draft, err = a.Drafter.Draft(ctx, res.Analysis, prospect.DraftOptions{
		Tone:       a.Tone,
		SenderName: a.SenderName,
	})
	if err != nil {
		a.fail(res, err, log)
		return
	}
	log("Draft ready: %q", res.Draft.Subject)

	if !autoSend || to == "" {
		res.Stage = StageReviewing
		log("Pipeline paused for review. Approve to send.")
		return
	}

	a.send(ctx, res, to, log)
}

// Approve sends a reviewed draft to to. The result must be at
// StageReviewing.
func (a *Agent) Approve(ctx context.Context, res *Result, to string, progress prospect.ProgressFunc) error {
	if res.Stage != StageReviewing || res.Draft == nil {
		return prospect.Errorf(prospect.EINVALID, "result is not awaiting review (stage %s)", res.Stage)
	}
	if to == "" {
		return prospect.Errorf(prospect.EINVALID, "recipient address required")
	}
	a.send(ctx, res, to, a.reporter(progress))
	return res.Err
}

// send delivers the draft and records the attempt in the outreach log.
func (a *Agent) send(ctx context.Context, res *Result, to string, log func(string, ...any)) {
	res.Stage = StageSending
	log("Phase 4: Sending to %s...", to)

	res.Draft.To = to
	record := &prospect.OutreachRecord{
		ProspectURL:    res.URL,
		ProspectName:   res.Analysis.CompanyName,
		RecipientEmail: to,
		EmailSubject:   res.Draft.Subject,
		EmailBody:      res.Draft.Body,
		Status:         prospect.OutreachPending,
	}

	sendErr := a.Sender.Send(ctx, res.Draft, prospect.SendOptions{To: to})
	record.Timestamp = a.now().UTC()
	if sendErr != nil {
		record.Status = prospect.OutreachFailed
		record.ErrorMessage = describe(sendErr)
	} else {
		record.Status = prospect.OutreachSent
	}
	res.Record = record

	if a.Outreach != nil {
		if _, err := a.Outreach.CreateRecord(ctx, record); err != nil {
			a.logger().Warn("failed to log outreach", "to", to, "error", err)
		}
	}

	if sendErr != nil {
		res.Stage = StageFailed
		res.Err = sendErr
		log("Send failed: %s", record.ErrorMessage)
		return
	}
	res.Stage = StageComplete
	log("Email sent successfully!")
}

// RunBatch runs each URL up to StageReviewing. Items never send and a
// failing item never stops the others. Results keep the order of urls.
func (a *Agent) RunBatch(ctx context.Context, urls []string, progress prospect.ProgressFunc) []*Result {
	results := make([]*Result, len(urls))

	var mu sync.Mutex
	report := func(msg string) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		progress(msg)
	}

	var g errgroup.Group
	g.SetLimit(max(a.Concurrency, 1))
	for i, url := range urls {
		g.Go(func() error {
			report(fmt.Sprintf("--- Processing %d/%d: %s ---", i+1, len(urls), url))
			results[i] = a.RunPipeline(ctx, url, "", false, report)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Agent) saveCorpus(ctx context.Context, corpus *prospect.Corpus) {
	if a.Corpora == nil {
		return
	}
	if _, err := a.Corpora.SaveCorpus(ctx, corpus); err != nil {
		a.logger().Warn("failed to store corpus", "url", corpus.BaseURL, "error", err)
	}
}

func (a *Agent) fail(res *Result, err error, log func(string, ...any)) *Result {
	res.Stage = StageFailed
	res.Err = err
	a.logger().Error("pipeline error", "url", res.URL, "error", err)
	log("Error: %s", describe(err))
	return res
}

// describe returns the user-facing text of err.
func describe(err error) string {
	if prospect.ErrorCode(err) == prospect.EINTERNAL {
		return err.Error()
	}
	return prospect.ErrorMessage(err)
}

func (a *Agent) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Agent) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Agent) reporter(progress prospect.ProgressFunc) func(format string, args ...any) {
	logger := a.logger()
	return func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		logger.Info(msg)
		if progress != nil {
			progress(msg)
		}
	}
}
