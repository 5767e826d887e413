package main

import (
	"fmt"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/crawl"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	recs, err := deps.Corpora.FindCorpora(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(deps.Stdout, "No stored crawls. Use 'prospect scrape --save' to store one.")
		return nil
	}

	for _, rec := range recs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s  %d pages  %s\n",
			rec.ID,
			rec.CreatedAt.Format(prospect.DateLayout),
			rec.Corpus.BaseURL,
			rec.Corpus.CompanyName,
			len(rec.Corpus.Pages),
			crawl.FormatChars(rec.Corpus.TotalChars()),
		)
	}
	return nil
}
