package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/outreach"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := expandInputs(c.Inputs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no URLs given")
		return prospect.Errorf(prospect.EINVALID, "no URLs given")
	}

	agent := deps.Agent
	agent.Tone = prospect.ParseTone(c.Tone)
	agent.AllowRender = !c.NoRender
	agent.Concurrency = c.Concurrency

	results := agent.RunBatch(deps.Ctx, urls, progressWriter(deps.Stderr))

	failed := 0
	for i, res := range results {
		fmt.Fprintf(deps.Stdout, "%d. %s [%s]\n", i+1, res.URL, res.Stage)
		switch {
		case res.Stage == outreach.StageFailed:
			failed++
			fmt.Fprintf(deps.Stdout, "   error: %s\n", describe(res.Err))
		case res.Draft != nil:
			fmt.Fprintf(deps.Stdout, "   %s\n", res.Analysis.CompanyName)
			fmt.Fprintf(deps.Stdout, "   Subject: %s\n", res.Draft.Subject)
			if len(res.Corpus.Emails) > 0 {
				fmt.Fprintf(deps.Stdout, "   Contacts: %s\n", strings.Join(res.Corpus.Emails, ", "))
			}
		}
	}
	fmt.Fprintf(deps.Stdout, "\n%d of %d drafted. Use 'prospect run URL --to ADDR' to review and send.\n", len(results)-failed, len(results))
	return nil
}

// expandInputs returns the URLs in inputs. An input naming an existing
// file contributes one URL per non-empty line; lines starting with # are
// skipped.
func expandInputs(inputs []string) ([]string, error) {
	var urls []string
	for _, in := range inputs {
		f, err := os.Open(in)
		if errors.Is(err, fs.ErrNotExist) {
			urls = append(urls, in)
			continue
		}
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			urls = append(urls, line)
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", in, err)
		}
	}
	return urls, nil
}
