package sqldb_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/foundation/logger"
)

// dupExt is an ExtContext whose every operation fails with a postgres
// unique constraint violation, as a concurrent insert on the same key
// would.
type dupExt struct{}

func (dupExt) DriverName() string {
	return "pgx"
}

func (dupExt) Rebind(q string) string {
	return q
}

func (dupExt) BindNamed(q string, arg any) (string, []any, error) {
	return q, nil, nil
}

func (dupExt) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
}

func (dupExt) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
}

func (dupExt) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
}

func (dupExt) QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row {
	return nil
}

func Test_UniqueViolationTranslation(t *testing.T) {
	ctx := context.Background()
	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	data := struct {
		Email string `db:"email"`
	}{
		Email: "ada@example.com",
	}

	// Exec path.
	err := sqldb.NamedExecContext(ctx, log, dupExt{}, "UPDATE users SET email = :email", data)
	var dupErr sqldb.ErrDBDuplicatedEntry
	if !errors.As(err, &dupErr) {
		t.Fatalf("exec: got %v (%T), exp ErrDBDuplicatedEntry", err, err)
	}
	if dupErr.Column != "users_email_key" {
		t.Errorf("exec column: got %q, exp %q", dupErr.Column, "users_email_key")
	}

	// Query paths carry the same translation: Create statements return
	// their generated id through INSERT ... RETURNING.
	var dest struct {
		ID int64 `db:"user_id"`
	}
	err = sqldb.NamedQueryStruct(ctx, log, dupExt{}, "INSERT INTO users (email) VALUES (:email) RETURNING user_id", data, &dest)
	if !errors.As(err, &dupErr) {
		t.Fatalf("querystruct: got %v (%T), exp ErrDBDuplicatedEntry", err, err)
	}

	var slice []struct {
		ID int64 `db:"user_id"`
	}
	err = sqldb.NamedQuerySlice(ctx, log, dupExt{}, "SELECT user_id FROM users WHERE email = :email", data, &slice)
	if !errors.As(err, &dupErr) {
		t.Fatalf("queryslice: got %v (%T), exp ErrDBDuplicatedEntry", err, err)
	}
}
