package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/outreach"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	agent := deps.Agent
	agent.Tone = prospect.ParseTone(c.Tone)
	agent.AllowRender = !c.NoRender
	progress := progressWriter(deps.Stderr)

	var res *outreach.Result
	if c.Stored {
		rec, err := deps.Corpora.FindCorpusByURL(deps.Ctx, c.URL)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s. Use 'prospect scrape --save' first.\n", prospect.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Using crawl %s from %s\n", rec.ID, rec.CreatedAt.Format(prospect.DateLayout))
		res = agent.RunCorpus(deps.Ctx, rec.Corpus, c.To, c.Send, progress)
	} else {
		res = agent.RunPipeline(deps.Ctx, c.URL, c.To, c.Send, progress)
	}

	if res.Analysis != nil {
		printAnalysis(deps.Stdout, res.Analysis)
	}
	if res.Draft != nil {
		printDraft(deps.Stdout, res.Draft)
	}

	if res.Stage == outreach.StageReviewing {
		to := c.To
		if to == "" && res.Corpus != nil && len(res.Corpus.Emails) > 0 {
			fmt.Fprintf(deps.Stdout, "Contact emails found: %s\n", strings.Join(res.Corpus.Emails, ", "))
		}
		if to == "" {
			fmt.Fprintln(deps.Stdout, "No recipient given. Re-run with --to to send.")
			return nil
		}
		if !confirm(deps.Stdin, deps.Stdout, fmt.Sprintf("Send this email to %s? [y/N]: ", to)) {
			fmt.Fprintln(deps.Stdout, "Not sent.")
			return nil
		}
		if err := agent.Approve(deps.Ctx, res, to, progress); err != nil && res.Stage != outreach.StageFailed {
			fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
			return err
		}
	}

	if res.Stage == outreach.StageFailed {
		fmt.Fprintf(deps.Stderr, "error: %s failed: %s\n", res.URL, describe(res.Err))
		return res.Err
	}
	if res.Stage == outreach.StageComplete {
		fmt.Fprintf(deps.Stdout, "Sent to %s\n", res.Record.RecipientEmail)
	}
	return nil
}

func printAnalysis(w io.Writer, a *prospect.Analysis) {
	fmt.Fprintf(w, "== %s ==\n", a.CompanyName)
	if a.Industry != "" {
		fmt.Fprintf(w, "Industry: %s\n", a.Industry)
	}
	if a.CompanySummary != "" {
		fmt.Fprintf(w, "\n%s\n", a.CompanySummary)
	}
	printList(w, "Services", a.ServicesOffered)
	printList(w, "Pain points", a.PainPoints)
	printList(w, "AI opportunities", a.AIOpportunities)
	if a.ValueProposition != "" {
		fmt.Fprintf(w, "\nValue proposition: %s\n", a.ValueProposition)
	}
	if a.RecommendedAngle != "" {
		fmt.Fprintf(w, "Recommended angle: %s\n", a.RecommendedAngle)
	}
	fmt.Fprintln(w)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func printDraft(w io.Writer, d *prospect.EmailDraft) {
	fmt.Fprintf(w, "Subject: %s\n", d.Subject)
	fmt.Fprintf(w, "Tone:    %s\n\n", d.Tone)
	fmt.Fprintf(w, "%s\n\n", d.Body)
}

// confirm asks prompt and reports whether the answer starts with y.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, prompt)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(w)
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// describe returns the user-facing text of err.
func describe(err error) string {
	if prospect.ErrorCode(err) == prospect.EINTERNAL {
		return err.Error()
	}
	return prospect.ErrorMessage(err)
}
