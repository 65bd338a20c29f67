package school

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"rollcall.org/internal/auth"
)

var _ Store = (*InMemory)(nil)

// InMemory implements Store with in-process concurrency safety. The users
// store is consulted so rosters return full student rows, mirroring the SQL
// join the PG implementation performs.
type InMemory struct {
	mu      sync.RWMutex
	nextID  int64
	classes map[int64]*Class
	rosters map[int64]map[int64]struct{} // classID -> studentIDs
	users   auth.UserStore
}

// NewInMemory creates an empty class store backed by the given user store.
func NewInMemory(users auth.UserStore) *InMemory {
	return &InMemory{
		classes: make(map[int64]*Class),
		rosters: make(map[int64]map[int64]struct{}),
		users:   users,
	}
}

func (s *InMemory) Create(ctx context.Context, name string, teacherID int64) (Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Class{}, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}
	if teacherID <= 0 {
		return Class{}, fmt.Errorf("%w: teacher id is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cls := &Class{
		ID:        s.nextID,
		Name:      name,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	}
	s.classes[cls.ID] = cls
	s.rosters[cls.ID] = make(map[int64]struct{})
	return *cls, nil
}

func (s *InMemory) Find(ctx context.Context, id int64) (Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cls, ok := s.classes[id]
	if !ok {
		return Class{}, ErrNotFound
	}
	out := *cls
	out.StudentCount = len(s.rosters[id])
	return out, nil
}

func (s *InMemory) ListByTeacher(ctx context.Context, teacherID int64) ([]Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Class
	for _, cls := range s.classes {
		if cls.TeacherID != teacherID {
			continue
		}
		out := *cls
		out.StudentCount = len(s.rosters[cls.ID])
		res = append(res, out)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *InMemory) Students(ctx context.Context, classID int64) ([]*auth.User, error) {
	ids, err := s.EnrolledStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	res := make([]*auth.User, 0, len(ids))
	var stale []int64
	for _, id := range ids {
		u, err := s.users.Find(ctx, id)
		if errors.Is(err, auth.ErrNotFound) {
			// Deleted account; the SQL schema drops these rows via
			// on delete cascade, here we prune lazily.
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	if len(stale) > 0 {
		s.mu.Lock()
		for _, id := range stale {
			delete(s.rosters[classID], id)
		}
		s.mu.Unlock()
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Name != res[j].Name {
			return res[i].Name < res[j].Name
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *InMemory) Enroll(ctx context.Context, classID, studentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster, ok := s.rosters[classID]
	if !ok {
		return ErrNotFound
	}
	roster[studentID] = struct{}{}
	return nil
}

func (s *InMemory) EnrolledStudents(ctx context.Context, classID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roster, ok := s.rosters[classID]
	if !ok {
		return nil, ErrNotFound
	}
	res := make([]int64, 0, len(roster))
	for id := range roster {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}

func (s *InMemory) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.classes), nil
}
