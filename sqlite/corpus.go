package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ prospect.CorpusService = (*CorpusService)(nil)

// CorpusService implements prospect.CorpusService using SQLite.
type CorpusService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewCorpusService creates a new CorpusService.
func NewCorpusService(db *DB) *CorpusService {
	return &CorpusService{db: db, Now: time.Now}
}

// SaveCorpus stores corpus and its pages in one transaction.
func (s *CorpusService) SaveCorpus(ctx context.Context, corpus *prospect.Corpus) (*prospect.CorpusRecord, error) {
	if corpus.Empty() {
		return nil, prospect.Errorf(prospect.EINVALID, "corpus has no pages")
	}

	emails, err := json.Marshal(corpus.Emails)
	if err != nil {
		return nil, err
	}

	rec := &prospect.CorpusRecord{
		ID:        uuid.New().String(),
		CreatedAt: s.Now().UTC().Truncate(time.Second),
		Corpus:    corpus,
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO corpora (id, base_url, company_name, emails, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, corpus.BaseURL, corpus.CompanyName, string(emails), rec.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}

	for i, page := range corpus.Pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (id, corpus_id, position, url, title, content, content_hash, page_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), rec.ID, i, page.URL, page.Title, page.Content, hashContent(page.Content), string(page.Type)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

// FindCorpusByURL returns the most recent crawl of baseURL. The URL is
// normalized the same way the crawler normalizes seeds.
func (s *CorpusService) FindCorpusByURL(ctx context.Context, baseURL string) (*prospect.CorpusRecord, error) {
	recs, err := s.findCorpora(ctx, prospect.NormalizeURL(baseURL), 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, prospect.Errorf(prospect.ENOTFOUND, "no stored corpus for %s", baseURL)
	}
	return recs[0], nil
}

// FindCorpora returns the latest stored crawls, newest first. A limit of
// zero returns every crawl.
func (s *CorpusService) FindCorpora(ctx context.Context, limit int) ([]*prospect.CorpusRecord, error) {
	return s.findCorpora(ctx, "", limit)
}

// DeleteCorpus removes a crawl and its pages.
func (s *CorpusService) DeleteCorpus(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM corpora WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return prospect.Errorf(prospect.ENOTFOUND, "corpus not found")
	}
	return nil
}

func (s *CorpusService) findCorpora(ctx context.Context, baseURL string, limit int) ([]*prospect.CorpusRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, base_url, company_name, emails, created_at FROM corpora WHERE 1=1")
	if baseURL != "" {
		query.WriteString(" AND base_url = ?")
		args = append(args, baseURL)
	}
	query.WriteString(" ORDER BY rowid DESC")
	appendLimit(&query, &args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		id, baseURL, companyName, emails, createdAt string
	}
	var found []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.baseURL, &r.companyName, &r.emails, &r.createdAt); err != nil {
			return nil, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	recs := make([]*prospect.CorpusRecord, 0, len(found))
	for _, r := range found {
		createdAt, err := parseRFC3339(r.createdAt, "created_at")
		if err != nil {
			return nil, err
		}
		var emails []string
		if err := json.Unmarshal([]byte(r.emails), &emails); err != nil {
			return nil, fmt.Errorf("failed to parse emails: %w", err)
		}
		pages, err := s.findPages(ctx, r.id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, &prospect.CorpusRecord{
			ID:        r.id,
			CreatedAt: createdAt,
			Corpus:    prospect.NewCorpus(r.baseURL, r.companyName, pages, emails),
		})
	}
	return recs, nil
}

func (s *CorpusService) findPages(ctx context.Context, corpusID string) ([]*prospect.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, content, content_hash, page_type
		FROM pages
		WHERE corpus_id = ?
		ORDER BY position
	`, corpusID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*prospect.Page
	for rows.Next() {
		var page prospect.Page
		var hash, pageType string
		if err := rows.Scan(&page.URL, &page.Title, &page.Content, &hash, &pageType); err != nil {
			return nil, err
		}
		if hashContent(page.Content) != hash {
			return nil, prospect.Errorf(prospect.EINTERNAL, "stored page %s is corrupt", page.URL)
		}
		page.Type = prospect.PageType(pageType)
		pages = append(pages, &page)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

