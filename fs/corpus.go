package fs

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/prospect"
)

// URLToPath converts a page URL to a relative markdown file path.
// Example: https://acme.io/about/team → about/team.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := u.Path
	if path == "" || path == "/" {
		return "index.md", nil
	}

	path = strings.TrimPrefix(path, "/")
	if strings.HasSuffix(path, "/") {
		path += "index.md"
	} else {
		path += ".md"
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", prospect.Errorf(prospect.EINVALID, "path traversal in %q", rawURL)
	}
	return clean, nil
}

// FormatPage formats a page with YAML frontmatter.
func FormatPage(page *prospect.Page, crawled time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(page.Title)
	b.WriteString("\ntype: ")
	b.WriteString(string(page.Type))
	b.WriteString("\ncrawled: ")
	b.WriteString(crawled.Format(prospect.DateLayout))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// CorpusExporter writes a corpus as one markdown file per page.
// Pages are written to a temporary directory that replaces the target
// directory only once every page was written.
type CorpusExporter struct {
	// Now returns the crawl date written to frontmatter. Defaults to time.Now.
	Now func() time.Time
}

// NewCorpusExporter creates a new CorpusExporter.
func NewCorpusExporter() *CorpusExporter {
	return &CorpusExporter{Now: time.Now}
}

// Export writes corpus into dir, replacing any previous export.
func (e *CorpusExporter) Export(corpus *prospect.Corpus, dir string) error {
	if corpus.Empty() {
		return prospect.Errorf(prospect.EINVALID, "corpus has no pages")
	}

	dir = filepath.Clean(dir)
	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}

	crawled := e.Now()
	for _, page := range corpus.Pages {
		if err := writePage(tmp, page, crawled); err != nil {
			_ = os.RemoveAll(tmp)
			return err
		}
	}
	if err := writeFileAtomic(filepath.Join(tmp, "summary.txt"), []byte(corpus.Summary)); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Rename(tmp, dir)
}

func writePage(base string, page *prospect.Page, crawled time.Time) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(base, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(fullPath, []byte(FormatPage(page, crawled)), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}
	return nil
}
