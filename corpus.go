package prospect

import (
	"context"
	"time"
)

// CorpusRecord is a stored crawl.
type CorpusRecord struct {
	ID        string
	CreatedAt time.Time
	Corpus    *Corpus
}

// CorpusService stores crawled corpora so they can be analyzed again
// without re-crawling.
type CorpusService interface {
	// SaveCorpus stores the corpus and returns its ID.
	SaveCorpus(ctx context.Context, corpus *Corpus) (*CorpusRecord, error)

	// FindCorpusByURL returns the most recent crawl of baseURL,
	// or ENOTFOUND.
	FindCorpusByURL(ctx context.Context, baseURL string) (*CorpusRecord, error)

	// FindCorpora returns the latest stored crawls, newest first.
	FindCorpora(ctx context.Context, limit int) ([]*CorpusRecord, error)

	// DeleteCorpus removes a stored crawl by ID.
	DeleteCorpus(ctx context.Context, id string) error
}
