package school

import (
	"context"

	"rollcall.org/internal/auth"
)

// Store manages classes and rosters. Attendance consumes it read-only;
// writes come from the admin surface.
type Store interface {
	Create(ctx context.Context, name string, teacherID int64) (Class, error)
	Find(ctx context.Context, id int64) (Class, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]Class, error)
	Students(ctx context.Context, classID int64) ([]*auth.User, error)
	Enroll(ctx context.Context, classID, studentID int64) error
	EnrolledStudents(ctx context.Context, classID int64) ([]int64, error)
	Count(ctx context.Context) (int, error)
}
