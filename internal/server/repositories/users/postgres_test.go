package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*name,\s*user_type,\s*password_hash\)`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow("u-1", now, now)
	mock.ExpectQuery(q).
		WithArgs("a@x.com", "Ann", "coach", []byte("hash")).
		WillReturnRows(rows)

	u := &models.User{Email: "a@x.com", Name: "Ann", UserType: "coach", PasswordHash: []byte("hash")}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

type stateErr struct{ code string }

func (e stateErr) Error() string    { return "duplicate key value violates unique constraint" }
func (e stateErr) SQLState() string { return e.code }

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users`
	mock.ExpectQuery(q).
		WithArgs("a@x.com", "Ann", "athlete", []byte("hash")).
		WillReturnError(stateErr{code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{
		Email: "a@x.com", Name: "Ann", UserType: "athlete", PasswordHash: []byte("hash"),
	})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users`
	mock.ExpectQuery(q).
		WithArgs("a@x.com", "Ann", "athlete", []byte("hash")).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{
		Email: "a@x.com", Name: "Ann", UserType: "athlete", PasswordHash: []byte("hash"),
	})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "name", "user_type", "photo_url", "password_hash", "created_at", "updated_at",
	}).AddRow("u-1", "a@x.com", "Ann", "coach", "", []byte("hash"), now, now)
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`
	mock.ExpectQuery(q).WithArgs("a@x.com").WillReturnRows(userRows(time.Now()))

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.UserType != "coach" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`
	mock.ExpectQuery(q).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1`
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(userRows(time.Now()))

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2`
	rows := sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1", "Ann Smith", "coach", "https://cdn/p.png").
		WillReturnRows(rows)

	u := &models.User{ID: "u-1", Name: "Ann Smith", UserType: "coach", PhotoURL: "https://cdn/p.png"}
	got, err := repo.UpdateProfile(context.Background(), u)
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("updated_at not scanned")
	}
}

func TestUpdatePassword_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2`
	mock.ExpectExec(q).
		WithArgs("ghost@x.com", []byte("hash")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost@x.com", []byte("hash"))
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdatePassword_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2`
	mock.ExpectExec(q).
		WithArgs("a@x.com", []byte("hash")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), "a@x.com", []byte("hash")); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
}
