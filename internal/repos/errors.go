package repos

import (
	"errors"
	"fmt"
	"strings"

	"agora/internal/apperr"

	"gorm.io/gorm"
)

// constraintMarkers catches key violations from drivers that do not translate
// their errors into gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
var constraintMarkers = []string{
	"UNIQUE constraint failed",
	"FOREIGN KEY constraint failed",
	"duplicate key value",
	"violates foreign key constraint",
	"violates unique constraint",
}

// translate maps a storage error onto the apperr taxonomy. Validation errors
// raised by model hooks pass through untouched.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(op, apperr.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated), isConstraint(err):
		return apperr.New(op, apperr.ErrConstraintViolation, err)
	default:
		return apperr.New(op, apperr.ErrPersistence, err)
	}
}

func isConstraint(err error) bool {
	msg := err.Error()
	for _, m := range constraintMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// inUse is the error for deletes blocked by a live reference.
func inUse(op, format string, args ...any) error {
	return apperr.New(op, apperr.ErrConstraintViolation, fmt.Errorf(format, args...))
}

func requireSaved(op, name string, id uint) error {
	if id == 0 {
		return apperr.Invalid(op, "%s must be saved first", name)
	}
	return nil
}
