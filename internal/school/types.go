package school

import (
	"errors"
	"time"
)

// Class is owned by exactly one teacher; its roster lives in the
// class_students relation.
type Class struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	TeacherID    int64     `json:"teacher_id"`
	StudentCount int       `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	ErrNotFound     = errors.New("school: class not found")
	ErrInvalidInput = errors.New("school: invalid input")
)
