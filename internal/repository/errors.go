package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store-level failures. Services match them with errors.Is.
var (
	ErrNoEncontrado = errors.New("registro no encontrado")
	ErrDuplicado    = errors.New("ya existe un registro con esos datos")
	// ErrReferencia is returned when a delete or insert would break a
	// foreign key: removing protected reference data that is still in use, or
	// pointing at a row that does not exist.
	ErrReferencia = errors.New("el registro está referenciado por otros datos")
)

// PostgreSQL SQLSTATE codes mapped by mapError.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgRestrictViolation   = "23001"
)

// mapError translates driver errors into the package sentinels. The
// original error stays in the chain so callers can still inspect it.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNoEncontrado, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w (%s): %w", ErrDuplicado, pgErr.ConstraintName, err)
		case pgForeignKeyViolation, pgRestrictViolation:
			return fmt.Errorf("%w (%s): %w", ErrReferencia, pgErr.ConstraintName, err)
		}
	}
	return err
}
