package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/prospect"
)

// Run executes the log command.
func (c *LogCmd) Run(deps *Dependencies) error {
	records, err := deps.Outreach.FindRecords(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No outreach recorded yet. Use 'prospect run URL --to ADDR' to send one.")
		return nil
	}

	for i, r := range records {
		printRecord(deps.Stdout, i, r)
	}
	return nil
}

func printRecord(w io.Writer, index int, r *prospect.OutreachRecord) {
	fmt.Fprintf(w, "%d  %s  %-6s  %s  %s\n",
		index,
		r.Timestamp.Local().Format(prospect.DateLayout),
		r.Status,
		r.RecipientEmail,
		r.EmailSubject,
	)
	if r.ErrorMessage != "" {
		fmt.Fprintf(w, "   error: %s\n", r.ErrorMessage)
	}
	if r.OpenedAt != nil {
		fmt.Fprintf(w, "   opened: %s\n", r.OpenedAt.Local().Format(prospect.DateLayout))
	}
	if r.RepliedAt != nil {
		fmt.Fprintf(w, "   replied: %s\n", r.RepliedAt.Local().Format(prospect.DateLayout))
	}
	if r.FollowUpDate != "" {
		fmt.Fprintf(w, "   follow-up: %s\n", r.FollowUpDate)
	}
	if r.Notes != "" {
		fmt.Fprintf(w, "   notes: %s\n", r.Notes)
	}
}

// Run executes the mark command.
func (c *MarkCmd) Run(deps *Dependencies) error {
	var upd prospect.OutreachUpdate
	now := deps.Now().UTC()

	if c.Opened {
		upd.OpenedAt = &now
	}
	if c.Replied {
		upd.RepliedAt = &now
	}
	if c.FollowUp != "" {
		upd.FollowUpDate = &c.FollowUp
	}
	if c.ClearFollowUp {
		empty := ""
		upd.FollowUpDate = &empty
	}
	if c.Notes != "" {
		records, err := deps.Outreach.FindRecords(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
			return err
		}
		existing := ""
		if c.Index >= 0 && c.Index < len(records) {
			existing = records[c.Index].Notes
		}
		notes := prospect.AppendNote(existing, c.Notes)
		upd.Notes = &notes
	}

	if upd == (prospect.OutreachUpdate{}) {
		fmt.Fprintln(deps.Stderr, "error: nothing to update. Use --opened, --replied, --follow-up, --clear-follow-up or --notes.")
		return prospect.Errorf(prospect.EINVALID, "nothing to update")
	}

	record, err := deps.Outreach.UpdateRecord(deps.Ctx, c.Index, upd)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Updated:")
	printRecord(deps.Stdout, c.Index, record)
	return nil
}

// Run executes the followups command.
func (c *FollowupsCmd) Run(deps *Dependencies) error {
	records, err := deps.Outreach.FindRecords(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prospect.ErrorMessage(err))
		return err
	}

	today := deps.Now()
	f := prospect.ScheduleFollowUps(records, today)
	if len(f.Overdue)+len(f.Upcoming)+len(f.Later) == 0 {
		fmt.Fprintln(deps.Stdout, "No follow-ups scheduled. Use 'prospect mark INDEX --follow-up YYYY-MM-DD' to add one.")
		return nil
	}

	printFollowUps(deps.Stdout, "Overdue", f.Overdue, today)
	printFollowUps(deps.Stdout, "Upcoming (next 7 days)", f.Upcoming, today)
	printFollowUps(deps.Stdout, "Later", f.Later, today)
	return nil
}

func printFollowUps(w io.Writer, title string, items []prospect.IndexedRecord, today time.Time) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		r := it.Record
		fmt.Fprintf(w, "  %d  %s  %s  %s  %s\n", it.Index, r.FollowUpDate, dueIn(prospect.DaysUntil(r, today)), r.RecipientEmail, r.ProspectName)
	}
	fmt.Fprintln(w)
}

func dueIn(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("%d days overdue", -days)
	case days == -1:
		return "1 day overdue"
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
