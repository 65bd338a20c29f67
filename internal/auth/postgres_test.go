package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestPGStoreCreateReturnsAssignedID(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("insert into users").
		WithArgs("Ada", "ada@example.com", "hash", "student").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	u := &User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: RoleStudent}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID != 5 {
		t.Fatalf("expected id 5, got %d", u.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreCreateMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	u := &User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: RoleStudent}
	if err := store.Create(context.Background(), u); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select id, name, email, password_hash, role, created_at from users where email").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.FindByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreDeleteZeroRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from users").
		WithArgs(int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), 77); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreCountByRole(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select role, count").
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
			AddRow("teacher", 3).
			AddRow("student", 12))

	counts, err := store.CountByRole(context.Background())
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if counts[RoleTeacher] != 3 || counts[RoleStudent] != 12 || counts[RoleAdmin] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
