package channel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	logFileName  = "log.jsonl"
	lockFileName = "log.lock"

	// maxRecordSize bounds a single JSONL line.
	maxRecordSize = 16 << 20
)

// readRecords returns every well-formed record in the log, sorted by
// sequence number. A missing log is an empty log. Malformed lines, such as
// a line still being appended by another process, are skipped.
func readRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })
	return records, nil
}

// appendRecord writes rec to the log at path. The caller must hold the
// write guard. Existing records older than minAge are pruned by rewriting
// the log, except the newest one. It returns rec with its sequence number
// assigned.
func appendRecord(path string, rec Record, minAge time.Duration, now time.Time) (Record, error) {
	existing, err := readRecords(path)
	if err != nil {
		return Record{}, err
	}

	var last uint64
	if n := len(existing); n > 0 {
		last = existing[n-1].Seq
	}
	rec.Seq = last + 1

	line, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	if kept, pruned := prune(existing, minAge, now); pruned {
		return rec, rewrite(path, kept, line)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Record{}, fmt.Errorf("open log for append: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return Record{}, fmt.Errorf("append to log: %w", err)
	}
	if err := f.Close(); err != nil {
		return Record{}, fmt.Errorf("close log: %w", err)
	}
	return rec, nil
}

// prune drops records older than minAge, never the newest.
func prune(records []Record, minAge time.Duration, now time.Time) ([]Record, bool) {
	if minAge <= 0 || len(records) < 2 {
		return records, false
	}

	cutoff := now.Add(-minAge)
	kept := make([]Record, 0, len(records))
	for i, rec := range records {
		if i < len(records)-1 && rec.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(kept) != len(records)
}

// rewrite replaces the log atomically with records followed by tail.
func rewrite(path string, records []Record, tail []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), logFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create compacted log: %w", err)
	}
	w := bufio.NewWriter(tmp)

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}

	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fail(fmt.Errorf("write compacted log: %w", err))
		}
	}
	if _, err := w.Write(tail); err != nil {
		return fail(fmt.Errorf("write compacted log: %w", err))
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flush compacted log: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close compacted log: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace log: %w", err)
	}
	return nil
}
