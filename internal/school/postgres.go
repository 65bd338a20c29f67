package school

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"rollcall.org/internal/auth"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, name string, teacherID int64) (Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Class{}, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}
	if teacherID <= 0 {
		return Class{}, fmt.Errorf("%w: teacher id is required", ErrInvalidInput)
	}
	cls := Class{Name: name, TeacherID: teacherID}
	err := s.db.QueryRowContext(ctx,
		`insert into classes(name, teacher_id) values($1,$2) returning id, created_at`,
		name, teacherID,
	).Scan(&cls.ID, &cls.CreatedAt)
	if err != nil {
		return Class{}, err
	}
	return cls, nil
}

func (s *PGStore) Find(ctx context.Context, id int64) (Class, error) {
	var cls Class
	err := s.db.QueryRowContext(ctx, `
		select c.id, c.name, c.teacher_id, c.created_at,
		       (select count(*) from class_students cs where cs.class_id = c.id)
		from classes c where c.id=$1
	`, id).Scan(&cls.ID, &cls.Name, &cls.TeacherID, &cls.CreatedAt, &cls.StudentCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Class{}, ErrNotFound
	}
	if err != nil {
		return Class{}, err
	}
	return cls, nil
}

func (s *PGStore) ListByTeacher(ctx context.Context, teacherID int64) ([]Class, error) {
	rows, err := s.db.QueryContext(ctx, `
		select c.id, c.name, c.teacher_id, c.created_at,
		       (select count(*) from class_students cs where cs.class_id = c.id)
		from classes c where c.teacher_id=$1 order by c.id asc
	`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Class
	for rows.Next() {
		var cls Class
		if err := rows.Scan(&cls.ID, &cls.Name, &cls.TeacherID, &cls.CreatedAt, &cls.StudentCount); err != nil {
			return nil, err
		}
		res = append(res, cls)
	}
	return res, rows.Err()
}

func (s *PGStore) Students(ctx context.Context, classID int64) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		select u.id, u.name, u.email, u.role, u.created_at
		from users u
		join class_students cs on u.id = cs.student_id
		where cs.class_id=$1
		order by u.name asc, u.id asc
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*auth.User
	for rows.Next() {
		var (
			u    auth.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = auth.Role(role)
		res = append(res, &u)
	}
	return res, rows.Err()
}

func (s *PGStore) Enroll(ctx context.Context, classID, studentID int64) error {
	if _, err := s.Find(ctx, classID); err != nil {
		return err
	}
	// Re-enrolling is a no-op, the relation is a set.
	_, err := s.db.ExecContext(ctx, `
		insert into class_students(class_id, student_id)
		values ($1,$2) on conflict do nothing
	`, classID, studentID)
	return err
}

func (s *PGStore) EnrolledStudents(ctx context.Context, classID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
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

func (s *PGStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `select count(*) from classes`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
