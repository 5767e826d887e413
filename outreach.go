package prospect

import (
	"context"
	"encoding/json"
	"sort"
	"time"
)

// OutreachStatus is the delivery state of an outreach record.
type OutreachStatus string

// Outreach statuses.
const (
	OutreachDrafted OutreachStatus = "drafted"
	OutreachPending OutreachStatus = "pending"
	OutreachSent    OutreachStatus = "sent"
	OutreachFailed  OutreachStatus = "failed"
)

// DateLayout is the format of follow-up dates.
const DateLayout = "2006-01-02"

// OutreachRecord is one entry in the CRM-style outreach log.
type OutreachRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	ProspectURL    string         `json:"prospect_url"`
	ProspectName   string         `json:"prospect_name"`
	RecipientEmail string         `json:"recipient_email"`
	EmailSubject   string         `json:"email_subject"`
	EmailBody      string         `json:"email_body"`
	Status         OutreachStatus `json:"status"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	OpenedAt       *time.Time     `json:"opened_at,omitempty"`
	RepliedAt      *time.Time     `json:"replied_at,omitempty"`
	FollowUpDate   string         `json:"follow_up_date,omitempty"` // YYYY-MM-DD
	Notes          string         `json:"notes,omitempty"`
}

// timestampLayouts are accepted when decoding record times. Layouts
// without an offset are read in local time.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON decodes a record, accepting RFC 3339 times as well as
// timestamps without a zone offset.
func (r *OutreachRecord) UnmarshalJSON(data []byte) error {
	type plain OutreachRecord
	var aux struct {
		plain
		Timestamp string  `json:"timestamp"`
		OpenedAt  *string `json:"opened_at"`
		RepliedAt *string `json:"replied_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	rec := OutreachRecord(aux.plain)
	ts, err := parseTimestamp(aux.Timestamp)
	if err != nil {
		return err
	}
	rec.Timestamp = ts
	if rec.OpenedAt, err = parseOptionalTimestamp(aux.OpenedAt); err != nil {
		return err
	}
	if rec.RepliedAt, err = parseOptionalTimestamp(aux.RepliedAt); err != nil {
		return err
	}
	*r = rec
	return nil
}

// parseTimestamp parses an RFC 3339 time or one without a zone offset.
// An empty string is the zero time.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Errorf(EINVALID, "invalid timestamp %q", s)
}

func parseOptionalTimestamp(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate returns an error if the record is missing required fields.
func (r *OutreachRecord) Validate() error {
	if r.RecipientEmail == "" {
		return Errorf(EINVALID, "recipient email required")
	}
	if r.FollowUpDate != "" {
		if _, err := time.Parse(DateLayout, r.FollowUpDate); err != nil {
			return Errorf(EINVALID, "invalid follow-up date %q", r.FollowUpDate)
		}
	}
	return nil
}

// OutreachUpdate holds the fields to change on a record. Nil fields are
// left untouched.
type OutreachUpdate struct {
	Status       *OutreachStatus
	OpenedAt     *time.Time
	RepliedAt    *time.Time
	FollowUpDate *string
	Notes        *string
}

// Apply copies the set fields of upd onto r.
func (upd OutreachUpdate) Apply(r *OutreachRecord) error {
	if upd.FollowUpDate != nil && *upd.FollowUpDate != "" {
		if _, err := time.Parse(DateLayout, *upd.FollowUpDate); err != nil {
			return Errorf(EINVALID, "invalid follow-up date %q", *upd.FollowUpDate)
		}
	}
	if upd.Status != nil {
		r.Status = *upd.Status
	}
	if upd.OpenedAt != nil {
		t := *upd.OpenedAt
		r.OpenedAt = &t
	}
	if upd.RepliedAt != nil {
		t := *upd.RepliedAt
		r.RepliedAt = &t
	}
	if upd.FollowUpDate != nil {
		r.FollowUpDate = *upd.FollowUpDate
	}
	if upd.Notes != nil {
		r.Notes = *upd.Notes
	}
	return nil
}

// AppendNote joins note onto existing notes on a new line.
func AppendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

// OutreachService persists the outreach log. Records are addressed by
// their zero-based position in the log.
type OutreachService interface {
	CreateRecord(ctx context.Context, record *OutreachRecord) (index int, err error)
	FindRecords(ctx context.Context) ([]*OutreachRecord, error)

	// UpdateRecord returns ENOTFOUND when index is out of range.
	UpdateRecord(ctx context.Context, index int, upd OutreachUpdate) (*OutreachRecord, error)
}

// IndexedRecord pairs a record with its position in the log.
type IndexedRecord struct {
	Index  int
	Record *OutreachRecord
}

// FollowUps groups records with a pending follow-up.
type FollowUps struct {
	Overdue  []IndexedRecord // due today or earlier
	Upcoming []IndexedRecord // due within the next 7 days
	Later    []IndexedRecord
}

// ScheduleFollowUps buckets records that have a follow-up date and no
// reply. Each bucket is sorted by follow-up date. Records with an
// unparseable date are ignored.
func ScheduleFollowUps(records []*OutreachRecord, today time.Time) FollowUps {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	week := day.AddDate(0, 0, 7)

	var f FollowUps
	for i, r := range records {
		if r == nil || r.FollowUpDate == "" || r.RepliedAt != nil {
			continue
		}
		due, err := time.Parse(DateLayout, r.FollowUpDate)
		if err != nil {
			continue
		}
		ir := IndexedRecord{Index: i, Record: r}
		switch {
		case !due.After(day):
			f.Overdue = append(f.Overdue, ir)
		case !due.After(week):
			f.Upcoming = append(f.Upcoming, ir)
		default:
			f.Later = append(f.Later, ir)
		}
	}
	for _, b := range [][]IndexedRecord{f.Overdue, f.Upcoming, f.Later} {
		sort.SliceStable(b, func(i, j int) bool {
			return b[i].Record.FollowUpDate < b[j].Record.FollowUpDate
		})
	}
	return f
}

// DaysUntil returns the whole days from today to the record's follow-up
// date. Negative values mean the follow-up is overdue.
func DaysUntil(r *OutreachRecord, today time.Time) int {
	due, err := time.Parse(DateLayout, r.FollowUpDate)
	if err != nil {
		return 0
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(day).Hours() / 24)
}
