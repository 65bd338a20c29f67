package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for attendance days.
const DateLayout = "2006-01-02"

// Status of one student for one class on one day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// ParseStatus normalizes and validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(strings.ToLower(s))) {
	case StatusPresent:
		return StatusPresent, nil
	case StatusAbsent:
		return StatusAbsent, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// ParseDate validates a day in DateLayout.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	day, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return day.Format(DateLayout), nil
}

// Entry is one roster line of a day submission.
type Entry struct {
	StudentID int64  `json:"studentId"`
	Status    Status `json:"status"`
}

// Record is the persisted mark. (ClassID, StudentID, Date) is unique: a
// re-mark mutates Status in place, no history of changes is kept.
type Record struct {
	ID        int64  `json:"id"`
	ClassID   int64  `json:"class_id"`
	ClassName string `json:"class_name,omitempty"`
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Status    Status `json:"status"`
}

// Summary counts records per status.
type Summary map[Status]int

// History is a student's attendance, most recent day first.
type History struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

// Rate is the presence percentage in [0,100]. Defined as 0 with no records.
func (h History) Rate() float64 {
	present := h.Summary[StatusPresent]
	total := present + h.Summary[StatusAbsent]
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

var (
	ErrNotFound     = errors.New("attendance: class not found")
	ErrInvalidInput = errors.New("attendance: invalid input")

	// ErrInvalidRoster marks a batch naming students outside the class
	// roster. The whole submission is rejected, nothing is applied.
	ErrInvalidRoster = errors.New("attendance: student not enrolled in class")
)

// RosterError carries the offending student ids of a rejected batch.
type RosterError struct {
	ClassID    int64
	StudentIDs []int64
}

func (e *RosterError) Error() string {
	return fmt.Sprintf("attendance: students %v not enrolled in class %d", e.StudentIDs, e.ClassID)
}

func (e *RosterError) Unwrap() error { return ErrInvalidRoster }
