package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGStore(db), mock
}

func TestPGMarkDayUpsertsInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from classes").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("select student_id from class_students").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(int64(10)).AddRow(int64(11)))
	mock.ExpectExec("insert into attendance").
		WithArgs(int64(1), int64(10), "2024-01-10", "present").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into attendance").
		WithArgs(int64(1), int64(11), "2024-01-10", "absent").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := store.MarkDay(context.Background(), 1, "2024-01-10", []Entry{
		{StudentID: 10, Status: StatusPresent},
		{StudentID: 11, Status: StatusAbsent},
	})
	if err != nil {
		t.Fatalf("MarkDay: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGMarkDayRollsBackOnRosterViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from classes").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("select student_id from class_students").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(int64(10)))
	mock.ExpectRollback()

	err := store.MarkDay(context.Background(), 1, "2024-01-10", []Entry{
		{StudentID: 10, Status: StatusPresent},
		{StudentID: 99, Status: StatusPresent},
	})
	if !errors.Is(err, ErrInvalidRoster) {
		t.Fatalf("expected ErrInvalidRoster, got %v", err)
	}
	var rosterErr *RosterError
	if !errors.As(err, &rosterErr) || len(rosterErr.StudentIDs) != 1 || rosterErr.StudentIDs[0] != 99 {
		t.Fatalf("offending ids not named: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGMarkDayUnknownClass(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from classes").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := store.MarkDay(context.Background(), 404, "2024-01-10", []Entry{{StudentID: 10, Status: StatusPresent}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStudentHistory(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select a.id, a.class_id, c.name").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "name", "student_id", "date", "status"}).
			AddRow(int64(2), int64(1), "Math 101", int64(10), "2024-01-11", "absent").
			AddRow(int64(1), int64(1), "Math 101", int64(10), "2024-01-10", "present"))

	history, err := store.StudentHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("StudentHistory: %v", err)
	}
	if len(history.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(history.Records))
	}
	if history.Records[0].Date != "2024-01-11" || history.Records[0].Status != StatusAbsent {
		t.Fatalf("unexpected first record: %+v", history.Records[0])
	}
	if history.Summary[StatusPresent] != 1 || history.Summary[StatusAbsent] != 1 {
		t.Fatalf("unexpected summary: %v", history.Summary)
	}
	if history.Rate() != 50 {
		t.Fatalf("expected rate 50, got %v", history.Rate())
	}
}
