package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"rekindle/internal/task"
)

// RecordError ties a rejected import record to its position in the input.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

type ImportResult struct {
	Imported []task.Task
	Rejected []RecordError
}

// ImportJSON reads a JSON array of loosely-typed task records and stores the
// ones that coerce cleanly. A malformed document is an error; a bad record
// only lands in Rejected.
func (s *Store) ImportJSON(r io.Reader) (ImportResult, error) {
	var recs []map[string]any
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return ImportResult{}, fmt.Errorf("decode records: %w", err)
	}

	var res ImportResult
	for i, rec := range recs {
		t, err := task.FromRecord(rec)
		if err != nil {
			res.Rejected = append(res.Rejected, RecordError{Index: i, Err: err})
			continue
		}
		saved, err := s.AddTask(t)
		if err != nil {
			res.Rejected = append(res.Rejected, RecordError{Index: i, Err: err})
			continue
		}
		res.Imported = append(res.Imported, saved)
	}
	s.log.Info("import finished", "imported", len(res.Imported), "rejected", len(res.Rejected))
	return res, nil
}
