package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/crawl"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	corpus := deps.NewCrawler().Crawl(deps.Ctx, c.URL, !c.NoRender, progressWriter(deps.Stderr))
	if corpus.Empty() {
		fmt.Fprintf(deps.Stderr, "error: could not fetch any content from %s\n", corpus.BaseURL)
		return prospect.Errorf(prospect.ENOCONTENT, "no content at %s", corpus.BaseURL)
	}

	if c.Save {
		rec, err := deps.Corpora.SaveCorpus(deps.Ctx, corpus)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Saved crawl %s\n", rec.ID)
	}

	if c.Out != "" {
		if err := deps.Exporter.Export(corpus, c.Out); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Wrote %d pages to %s\n", len(corpus.Pages), c.Out)
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(corpus)
	}

	printCorpus(deps.Stdout, corpus)
	return nil
}

// printCorpus writes a human-readable overview followed by the summary.
func printCorpus(w io.Writer, corpus *prospect.Corpus) {
	fmt.Fprintf(w, "Company: %s\n", corpus.CompanyName)
	fmt.Fprintf(w, "Website: %s\n", corpus.BaseURL)
	if len(corpus.Emails) > 0 {
		fmt.Fprintf(w, "Emails:  %s\n", strings.Join(corpus.Emails, ", "))
	}
	fmt.Fprintf(w, "Pages:   %d (%s)\n\n", len(corpus.Pages), crawl.FormatChars(corpus.TotalChars()))
	for _, p := range corpus.Pages {
		fmt.Fprintf(w, "  %-9s %s\n", p.Type, crawl.TruncateURL(p.URL, 70))
	}
	fmt.Fprintf(w, "\n%s\n", corpus.Summary)
}

// progressWriter returns a progress callback that prints to w.
func progressWriter(w io.Writer) prospect.ProgressFunc {
	return func(msg string) {
		fmt.Fprintln(w, msg)
	}
}
