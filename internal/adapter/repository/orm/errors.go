package orm

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/strogmv/blogadmin/internal/pkg/errors"
)

const pgForeignKeyViolation = "23503"

// mapError turns driver errors the caller can act on into AppErrors and
// wraps everything else with op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(err, http.StatusNotFound, "Not Found", op+": record not found")
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return errors.Wrap(err, http.StatusBadRequest, "Validation Error", "unknown category or tag identifier")
	}
	var liteErr sqlite3.Error
	if stderrors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return errors.Wrap(err, http.StatusBadRequest, "Validation Error", "unknown category or tag identifier")
	}
	return fmt.Errorf("%s: %w", op, err)
}
