package attendance

import "context"

// Service defines attendance operations.
//
// MarkDay applies one class/day submission as a single atomic batch: each
// entry is upserted on the (class, student, date) key, so resubmitting a day
// overwrites instead of duplicating. Entries for students outside the class
// roster reject the whole batch with a RosterError.
//
// StudentHistory returns the student's records ordered by date descending
// together with per-status counts.
type Service interface {
	MarkDay(ctx context.Context, classID int64, date string, entries []Entry) error
	StudentHistory(ctx context.Context, studentID int64) (History, error)
}

// Roster is the read-only view of enrollment that MarkDay validates against.
// school.Store satisfies it.
type Roster interface {
	EnrolledStudents(ctx context.Context, classID int64) ([]int64, error)
}

func validateBatch(date string, entries []Entry) (string, []Entry, error) {
	day, err := ParseDate(date)
	if err != nil {
		return "", nil, err
	}
	if len(entries) == 0 {
		return "", nil, ErrInvalidInput
	}
	normalized := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.StudentID <= 0 {
			return "", nil, ErrInvalidInput
		}
		status, err := ParseStatus(string(e.Status))
		if err != nil {
			return "", nil, err
		}
		normalized = append(normalized, Entry{StudentID: e.StudentID, Status: status})
	}
	return day, normalized, nil
}

func offenders(entries []Entry, enrolled []int64) []int64 {
	set := make(map[int64]struct{}, len(enrolled))
	for _, id := range enrolled {
		set[id] = struct{}{}
	}
	var out []int64
	seen := make(map[int64]struct{})
	for _, e := range entries {
		if _, ok := set[e.StudentID]; ok {
			continue
		}
		if _, dup := seen[e.StudentID]; dup {
			continue
		}
		seen[e.StudentID] = struct{}{}
		out = append(out, e.StudentID)
	}
	return out
}
