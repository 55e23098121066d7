package payments

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeAll reads line-delimited JSON records from r. Blank lines are
// ignored; lines that fail to decode are dropped and counted in skipped, not
// propagated, so a single corrupt line never poisons a whole load. The error
// return covers I/O failures only.
func DecodeAll(r io.Reader) (records []*Record, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec := &Record{}
		if err := json.Unmarshal([]byte(line), rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read records: %w", err)
	}
	return records, skipped, nil
}

// EncodeAll writes records to w as line-delimited JSON, one record per line,
// in slice order.
func EncodeAll(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return fmt.Errorf("encode record %s: %w", records[i].ID, err)
		}
	}
	return bw.Flush()
}

// maxLineBytes bounds a single archive line; anything larger is an I/O error
// rather than a silently truncated record.
const maxLineBytes = 4 * 1024 * 1024
