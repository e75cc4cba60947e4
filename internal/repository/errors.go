package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrForeignKeyViolation marks a write rejected because a referenced row is
// missing (SQLSTATE 23503). The pattern service self-heals on this by creating
// a stub profile and retrying once.
var ErrForeignKeyViolation = errors.New("foreign key violation")

// foreignKeyViolationCode is the postgres SQLSTATE for foreign_key_violation
const foreignKeyViolationCode = "23503"

// mapWriteError wraps distinguishable postgres failures in sentinel errors so
// callers can branch with errors.Is without importing pgx
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.Message)
	}
	return err
}
