// Package services contains the server's business logic: the credential
// vault, share-code lifecycle and third-party document access logging.
// Services are request-scoped over a shared *sql.DB and obtain repositories
// from a RepositoryManager, bound either to the pool or to a transaction.
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func newID() string { return uuid.NewString() }

// isUniqueViolation reports a PostgreSQL unique_violation anywhere in err's chain.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
