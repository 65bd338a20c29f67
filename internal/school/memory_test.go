package school

import (
	"context"
	"testing"

	"rollcall.org/internal/auth"
)

func seedStudent(t *testing.T, users *auth.InMemoryUsers, name, email string) *auth.User {
	t.Helper()
	u := &auth.User{Name: name, Email: email, PasswordHash: "x", Role: auth.RoleStudent}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func TestStudentsSkipsDeletedAccounts(t *testing.T) {
	ctx := context.Background()
	users := auth.NewInMemoryUsers()
	store := NewInMemory(users)

	kept := seedStudent(t, users, "Kept", "kept@school.test")
	gone := seedStudent(t, users, "Gone", "gone@school.test")

	cls, err := store.Create(ctx, "Math 8C", 99)
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	for _, id := range []int64{kept.ID, gone.ID} {
		if err := store.Enroll(ctx, cls.ID, id); err != nil {
			t.Fatalf("enroll %d: %v", id, err)
		}
	}

	if err := users.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	students, err := store.Students(ctx, cls.ID)
	if err != nil {
		t.Fatalf("Students after delete: %v", err)
	}
	if len(students) != 1 || students[0].ID != kept.ID {
		t.Fatalf("expected only the remaining student, got %v", students)
	}

	// The stale enrollment is pruned, so the roster no longer names the
	// deleted account.
	ids, err := store.EnrolledStudents(ctx, cls.ID)
	if err != nil {
		t.Fatalf("EnrolledStudents: %v", err)
	}
	if len(ids) != 1 || ids[0] != kept.ID {
		t.Fatalf("expected pruned roster, got %v", ids)
	}
}
