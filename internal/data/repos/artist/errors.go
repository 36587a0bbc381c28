package artist

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps driver errors onto error kinds; anything unrecognised is
// returned untouched. Constraint violations are logged at warn.
func translate(log *logger.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		log.Warn("constraint violation", "op", op, "error", err)
		return apperrors.Wrap(apperrors.KindConstraintViolation, op, err)
	}
	return err
}
