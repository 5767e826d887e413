package fs

import (
	"context"
	"encoding/json"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fwojciec/prospect"
)

// DefaultOutreachLogPath is where the outreach log lives by default.
var DefaultOutreachLogPath = filepath.Join("logs", "outreach_log.json")

// Ensure OutreachLog implements prospect.OutreachService at compile time.
var _ prospect.OutreachService = (*OutreachLog)(nil)

// OutreachLog stores outreach records as an indented JSON array in a
// single file. A missing or empty file reads as an empty log. A file that
// cannot be decoded is an error and is never overwritten.
//
// OutreachLog is safe for concurrent use within one process.
type OutreachLog struct {
	path string
	mu   sync.Mutex

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewOutreachLog creates an OutreachLog backed by the file at path.
func NewOutreachLog(path string) *OutreachLog {
	return &OutreachLog{path: path, Now: time.Now}
}

// Path returns the file backing the log.
func (l *OutreachLog) Path() string {
	return l.path
}

// CreateRecord appends record to the log and returns its index. A zero
// Timestamp is set to the current time.
func (l *OutreachLog) CreateRecord(ctx context.Context, record *prospect.OutreachRecord) (int, error) {
	if err := record.Validate(); err != nil {
		return 0, err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = l.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return 0, err
	}
	records = append(records, record)
	if err := l.write(records); err != nil {
		return 0, err
	}
	return len(records) - 1, nil
}

// FindRecords returns every record in log order.
func (l *OutreachLog) FindRecords(ctx context.Context) ([]*prospect.OutreachRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read()
}

// UpdateRecord applies upd to the record at index.
func (l *OutreachLog) UpdateRecord(ctx context.Context, index int, upd prospect.OutreachUpdate) (*prospect.OutreachRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(records) {
		return nil, prospect.Errorf(prospect.ENOTFOUND, "record index %d out of range (log has %d records)", index, len(records))
	}

	record := records[index]
	if err := upd.Apply(record); err != nil {
		return nil, err
	}
	if err := l.write(records); err != nil {
		return nil, err
	}
	return record, nil
}

// read loads the log. Must be called with mu held.
func (l *OutreachLog) read() ([]*prospect.OutreachRecord, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*prospect.OutreachRecord{}, nil
	} else if errors.Is(err, os.ErrPermission) {
		return nil, prospect.Errorf(prospect.EUNAVAILABLE, "outreach log %s is not readable", l.path)
	} else if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*prospect.OutreachRecord{}, nil
	}

	var records []*prospect.OutreachRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, prospect.Errorf(prospect.EINVALID, "outreach log %s cannot be decoded: %v", l.path, err)
	}

	out := records[:0]
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// write replaces the log file. Must be called with mu held.
func (l *OutreachLog) write(records []*prospect.OutreachRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(l.path, data); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return prospect.Errorf(prospect.EUNAVAILABLE, "outreach log %s is not writable", l.path)
		}
		return err
	}
	return nil
}
