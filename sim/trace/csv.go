package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// DetailLogHeader is the header row of detail_log.csv.
var DetailLogHeader = []string{"timestamp", "actor_name", "actor_type", "username", "ip", "result", "reason"}

// AuthLogHeader is the header row of auth_log.csv.
var AuthLogHeader = []string{"timestamp", "username", "ip", "result", "reason"}

// CSVWriter writes records as CSV rows, flushing after each one so the file is
// complete even if the run aborts.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter writes header to w and returns a writer for the rows that follow.
func NewCSVWriter(w io.Writer, header []string) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if err := cw.writeRow(header); err != nil {
		return nil, err
	}
	return cw, nil
}

func (c *CSVWriter) writeRow(row []string) error {
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	c.w.Flush()
	return c.w.Error()
}

// RecordOutcome writes r as a detail log row.
func (c *CSVWriter) RecordOutcome(r OutcomeRecord) error {
	return c.writeRow([]string{
		FormatTime(r.Timestamp), r.ActorName, r.ActorKind, r.Username, r.SourceIP, r.Outcome, r.Reason,
	})
}

// RecordAuth writes r as an auth log row.
func (c *CSVWriter) RecordAuth(r AuthRecord) error {
	return c.writeRow([]string{FormatTime(r.Timestamp), r.Username, r.SourceIP, r.Outcome, r.Reason})
}

// FormatTime renders virtual time with the shortest exact representation.
func FormatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// ReadDetailLog parses a detail_log.csv file back into outcome records.
func ReadDetailLog(path string) ([]OutcomeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening detail log: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading detail log %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("detail log %s: missing header", path)
	}
	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, name := range DetailLogHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("detail log %s: missing column %q", path, name)
		}
	}

	records := make([]OutcomeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		ts, err := strconv.ParseFloat(row[col["timestamp"]], 64)
		if err != nil {
			return nil, fmt.Errorf("detail log %s row %d: bad timestamp: %w", path, i+2, err)
		}
		records = append(records, OutcomeRecord{
			Timestamp: ts,
			ActorName: row[col["actor_name"]],
			ActorKind: row[col["actor_type"]],
			Username:  row[col["username"]],
			SourceIP:  row[col["ip"]],
			Outcome:   row[col["result"]],
			Reason:    row[col["reason"]],
		})
	}
	return records, nil
}
