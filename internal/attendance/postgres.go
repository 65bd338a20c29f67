package attendance

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ Service = (*PGStore)(nil)

// PGStore implements Service using PostgreSQL. The batch runs in one
// transaction; the unique (class_id, student_id, date) key serializes
// concurrent submissions for the same day, last committed write wins.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) MarkDay(ctx context.Context, classID int64, date string, entries []Entry) error {
	day, batch, err := validateBatch(date, entries)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `select 1 from classes where id=$1`, classID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	enrolled, err := enrolledIDs(ctx, tx, classID)
	if err != nil {
		return err
	}
	if bad := offenders(batch, enrolled); len(bad) > 0 {
		return &RosterError{ClassID: classID, StudentIDs: bad}
	}

	for _, e := range batch {
		if _, err := tx.ExecContext(ctx, `
			insert into attendance(class_id, student_id, date, status)
			values ($1,$2,$3::date,$4)
			on conflict (class_id, student_id, date) do update
			set status = excluded.status
		`, classID, e.StudentID, day, string(e.Status)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PGStore) StudentHistory(ctx context.Context, studentID int64) (History, error) {
	rows, err := s.db.QueryContext(ctx, `
		select a.id, a.class_id, c.name, a.student_id, to_char(a.date, 'YYYY-MM-DD'), a.status
		from attendance a
		join classes c on a.class_id = c.id
		where a.student_id=$1
		order by a.date desc, a.id desc
	`, studentID)
	if err != nil {
		return History{}, err
	}
	defer rows.Close()

	history := History{Records: []Record{}, Summary: Summary{}}
	for rows.Next() {
		var (
			rec    Record
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.ClassID, &rec.ClassName, &rec.StudentID, &rec.Date, &status); err != nil {
			return History{}, err
		}
		rec.Status = Status(status)
		history.Records = append(history.Records, rec)
		history.Summary[rec.Status]++
	}
	return history, rows.Err()
}

func enrolledIDs(ctx context.Context, tx *sql.Tx, classID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`select student_id from class_students where class_id=$1`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}
