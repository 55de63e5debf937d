package domain

import "time"

// CycleResult is the evaluated outcome of a single monitoring cycle.
// It lives only until the report for that cycle has been sent.
type CycleResult struct {
	ID        string
	CheckedAt time.Time
	Total     int
	Flagged   []ValidatorRecord
}

// Healthy reports whether no record was flagged.
func (r CycleResult) Healthy() bool {
	return len(r.Flagged) == 0
}

// EvaluateRecords flags every disconnected record inside its validation period.
// now is captured once by the caller and applied to every record; the
// backend order of records is preserved.
func EvaluateRecords(records []ValidatorRecord, now time.Time) []ValidatorRecord {
	flagged := make([]ValidatorRecord, 0)
	for _, v := range records {
		if v.Disconnected(now) {
			flagged = append(flagged, v)
		}
	}
	return flagged
}
