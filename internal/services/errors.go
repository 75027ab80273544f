package services

import (
	"errors"
	"strings"

	"cinecore/internal/apperr"

	"gorm.io/gorm"
)

// isDuplicate reports a unique-constraint violation. TranslateError covers the
// postgres and sqlite drivers; the string check catches untranslated errors.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// lookupErr turns a failed First() into NotFound or an internal error.
func lookupErr(err error, field, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(field, what+" not found")
	}
	return apperr.Internal("load "+what, err)
}
