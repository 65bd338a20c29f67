package attendance

import (
	"context"
	"sort"
	"sync"
)

var _ Service = (*InMemory)(nil)

type recordKey struct {
	classID   int64
	studentID int64
	date      string
}

// InMemory implements Service against the given roster with in-process
// concurrency safety. Used by tests and DSN-less runs.
type InMemory struct {
	mu         sync.RWMutex
	nextID     int64
	records    map[recordKey]*Record
	roster     Roster
	classNames map[int64]string
}

// NewInMemory creates an empty attendance store validating against roster.
func NewInMemory(roster Roster) *InMemory {
	return &InMemory{
		records:    make(map[recordKey]*Record),
		roster:     roster,
		classNames: make(map[int64]string),
	}
}

// SetClassName records the display name joined into history rows.
func (s *InMemory) SetClassName(classID int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classNames[classID] = name
}

func (s *InMemory) MarkDay(ctx context.Context, classID int64, date string, entries []Entry) error {
	day, batch, err := validateBatch(date, entries)
	if err != nil {
		return err
	}

	enrolled, err := s.roster.EnrolledStudents(ctx, classID)
	if err != nil {
		return err
	}
	if bad := offenders(batch, enrolled); len(bad) > 0 {
		return &RosterError{ClassID: classID, StudentIDs: bad}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range batch {
		key := recordKey{classID: classID, studentID: e.StudentID, date: day}
		if existing, ok := s.records[key]; ok {
			existing.Status = e.Status
			continue
		}
		s.nextID++
		s.records[key] = &Record{
			ID:        s.nextID,
			ClassID:   classID,
			ClassName: s.classNames[classID],
			StudentID: e.StudentID,
			Date:      day,
			Status:    e.Status,
		}
	}
	return nil
}

func (s *InMemory) StudentHistory(ctx context.Context, studentID int64) (History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := History{Records: []Record{}, Summary: Summary{}}
	for _, rec := range s.records {
		if rec.StudentID != studentID {
			continue
		}
		history.Records = append(history.Records, *rec)
		history.Summary[rec.Status]++
	}
	sort.Slice(history.Records, func(i, j int) bool {
		if history.Records[i].Date != history.Records[j].Date {
			return history.Records[i].Date > history.Records[j].Date
		}
		return history.Records[i].ID > history.Records[j].ID
	})
	return history, nil
}
